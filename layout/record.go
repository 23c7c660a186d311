package layout

import "fmt"

// RecordKind identifies one fixed-size structure that appears in the context
// block or in tables referenced from it.
type RecordKind uint8

const (
	SignatureID RecordKind = iota
	FunctionImport
	TableImport
	MemoryImport
	GlobalImport
	TableDefinition
	MemoryDefinition
	GlobalDefinition
	CallerCheckedFunc

	numRecordKinds
)

var recordKindNames = [numRecordKinds]string{
	SignatureID:       "signature_id",
	FunctionImport:    "function_import",
	TableImport:       "table_import",
	MemoryImport:      "memory_import",
	GlobalImport:      "global_import",
	TableDefinition:   "table_definition",
	MemoryDefinition:  "memory_definition",
	GlobalDefinition:  "global_definition",
	CallerCheckedFunc: "caller_checked_func",
}

func (k RecordKind) String() string {
	if k < numRecordKinds {
		return recordKindNames[k]
	}
	return fmt.Sprintf("record(%d)", uint8(k))
}

// RecordKinds returns every record kind in declaration order.
func RecordKinds() []RecordKind {
	kinds := make([]RecordKind, numRecordKinds)
	for i := range kinds {
		kinds[i] = RecordKind(i)
	}
	return kinds
}

// Field names one field of a record.
type Field uint8

const (
	FieldBody Field = iota
	FieldVMContext
	FieldFrom
	FieldBase
	FieldCurrentElements
	FieldCurrentLength
	FieldValue
	FieldSignatureID
	FieldFuncPtr
	FieldTypeIndex

	numFields
)

var fieldNames = [numFields]string{
	FieldBody:            "body",
	FieldVMContext:       "vmctx",
	FieldFrom:            "from",
	FieldBase:            "base",
	FieldCurrentElements: "current_elements",
	FieldCurrentLength:   "current_length",
	FieldValue:           "value",
	FieldSignatureID:     "id",
	FieldFuncPtr:         "func_ptr",
	FieldTypeIndex:       "type_index",
}

func (f Field) String() string {
	if f < numFields {
		return fieldNames[f]
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// ParseField maps a field name as printed by String back to the Field.
func ParseField(s string) (Field, bool) {
	for i, name := range fieldNames {
		if name == s {
			return Field(i), true
		}
	}
	return 0, false
}

// fieldSpec places a field in pointer-sized slots. Pointer fields are always
// one pointer wide; scalar fields have a fixed width regardless of target.
type fieldSpec struct {
	field Field
	slot  uint8
	width uint8 // 0: pointer-sized
}

func (f fieldSpec) offset(ptr PointerSize) uint8 {
	return f.slot * uint8(ptr)
}

func (f fieldSpec) size(ptr PointerSize) uint8 {
	if f.width == 0 {
		return uint8(ptr)
	}
	return f.width
}

type recordSpec struct {
	fields []fieldSpec
	align  uint8 // 0: pointer-aligned
}

// records is the record half of the context block contract.
var records = [numRecordKinds]recordSpec{
	SignatureID: {
		fields: []fieldSpec{{field: FieldSignatureID, width: 4}},
		align:  4,
	},
	FunctionImport: {
		fields: []fieldSpec{{field: FieldBody}, {field: FieldVMContext, slot: 1}},
	},
	TableImport: {
		fields: []fieldSpec{{field: FieldFrom}, {field: FieldVMContext, slot: 1}},
	},
	MemoryImport: {
		fields: []fieldSpec{{field: FieldFrom}, {field: FieldVMContext, slot: 1}},
	},
	GlobalImport: {
		fields: []fieldSpec{{field: FieldFrom}},
	},
	TableDefinition: {
		fields: []fieldSpec{{field: FieldBase}, {field: FieldCurrentElements, slot: 1, width: 4}},
	},
	MemoryDefinition: {
		fields: []fieldSpec{{field: FieldBase}, {field: FieldCurrentLength, slot: 1, width: 4}},
	},
	GlobalDefinition: {
		fields: []fieldSpec{{field: FieldValue, width: 8}},
		align:  8,
	},
	CallerCheckedFunc: {
		fields: []fieldSpec{
			{field: FieldFuncPtr},
			{field: FieldTypeIndex, slot: 1, width: 4},
			{field: FieldVMContext, slot: 2},
		},
	},
}

func (s *recordSpec) alignment(ptr PointerSize) uint8 {
	if s.align == 0 {
		return uint8(ptr)
	}
	return s.align
}

// size is the end of the last field padded to the record alignment, so a
// base pointer followed by a 4 byte length takes two pointer slots.
func (s *recordSpec) size(ptr PointerSize) uint8 {
	var end uint8
	for _, f := range s.fields {
		if e := f.offset(ptr) + f.size(ptr); e > end {
			end = e
		}
	}
	return alignTo(end, s.alignment(ptr))
}

func (s *recordSpec) find(f Field) (fieldSpec, bool) {
	for _, fs := range s.fields {
		if fs.field == f {
			return fs, true
		}
	}
	return fieldSpec{}, false
}

func alignTo(offset, align uint8) uint8 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func spec(k RecordKind) *recordSpec {
	if k >= numRecordKinds {
		panic("layout: unknown record kind " + k.String())
	}
	return &records[k]
}

// FieldInfo describes one field of a record at a given pointer size.
type FieldInfo struct {
	Field   Field
	Offset  uint8
	Size    uint8
	Pointer bool
}

// Record describes a record kind at a given pointer size.
type Record struct {
	Fields []FieldInfo
	Kind   RecordKind
	Size   uint8
	Align  uint8
}

// Field looks up a field of the record.
func (r Record) Field(f Field) (FieldInfo, bool) {
	for _, fi := range r.Fields {
		if fi.Field == f {
			return fi, true
		}
	}
	return FieldInfo{}, false
}

// Record returns the field table and size of a record kind.
func (l *Layout) Record(k RecordKind) Record {
	s := spec(k)
	r := Record{
		Kind:   k,
		Size:   s.size(l.ptr),
		Align:  s.alignment(l.ptr),
		Fields: make([]FieldInfo, len(s.fields)),
	}
	for i, f := range s.fields {
		r.Fields[i] = FieldInfo{
			Field:   f.field,
			Offset:  f.offset(l.ptr),
			Size:    f.size(l.ptr),
			Pointer: f.width == 0,
		}
	}
	return r
}

// RecordSize returns the size in bytes of one record of kind k.
func (l *Layout) RecordSize(k RecordKind) uint8 {
	return spec(k).size(l.ptr)
}

// HasField reports whether records of kind k have field f.
func (l *Layout) HasField(k RecordKind, f Field) bool {
	_, ok := spec(k).find(f)
	return ok
}

// FieldOffset returns the offset of field f within a record of kind k.
// It panics if the record has no such field.
func (l *Layout) FieldOffset(k RecordKind, f Field) uint8 {
	return mustField(k, f).offset(l.ptr)
}

// FieldSize returns the width in bytes of field f within a record of kind k.
// It panics if the record has no such field.
func (l *Layout) FieldSize(k RecordKind, f Field) uint8 {
	return mustField(k, f).size(l.ptr)
}

func mustField(k RecordKind, f Field) fieldSpec {
	fs, ok := spec(k).find(f)
	if !ok {
		panic(fmt.Sprintf("layout: %s has no field %s", k, f))
	}
	return fs
}
