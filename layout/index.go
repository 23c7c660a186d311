package layout

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-vmctx/errors"
)

// Typed indices into one region each. Converting between them is always a
// caller decision; the layout never mixes them up.
type (
	SignatureIndex     uint32
	FuncIndex          uint32 // imported function
	TableIndex         uint32 // imported table
	MemoryIndex        uint32 // imported memory
	GlobalIndex        uint32 // imported global
	DefinedTableIndex  uint32
	DefinedMemoryIndex uint32
	DefinedGlobalIndex uint32
)

func (SignatureIndex) Region() Region     { return SignatureIDs }
func (FuncIndex) Region() Region          { return ImportedFunctions }
func (TableIndex) Region() Region         { return ImportedTables }
func (MemoryIndex) Region() Region        { return ImportedMemories }
func (GlobalIndex) Region() Region        { return ImportedGlobals }
func (DefinedTableIndex) Region() Region  { return DefinedTables }
func (DefinedMemoryIndex) Region() Region { return DefinedMemories }
func (DefinedGlobalIndex) Region() Region { return DefinedGlobals }

// Index is satisfied by the typed region indices.
type Index interface {
	~uint32
	Region() Region
}

// OffsetOf returns the context block offset of record index in region r.
//
// The index must be below the region's count. The product index × record
// size is computed in 32 bits and the sum with the region start must fit an
// int32, since emitted code addresses the block with 32-bit immediates.
func (l *Layout) OffsetOf(r Region, index uint32) (Offset, error) {
	count := l.counts.Of(r)
	if uint64(index) >= count {
		return 0, l.fail(errors.OutOfRange(indexPath(r, index), index, count))
	}

	scaled, ok := mulUint32(index, uint32(l.RecordSize(r.Record())))
	if !ok {
		return 0, l.fail(errors.ArithmeticOverflow(indexPath(r, index), "index * record size"))
	}

	start, err := l.RegionStart(r)
	if err != nil {
		return 0, err
	}

	off, ok := addInt64(start, int64(scaled))
	if !ok {
		return 0, l.fail(errors.ArithmeticOverflow(indexPath(r, index), "region start + index offset"))
	}

	narrowed, ok := int32FromInt64(off)
	if !ok {
		return 0, l.fail(errors.NarrowingOverflow(indexPath(r, index), off))
	}
	return Offset(narrowed), nil
}

// FieldOffsetOf returns the context block offset of field f of record index
// in region r.
func (l *Layout) FieldOffsetOf(r Region, index uint32, f Field) (Offset, error) {
	kind := r.Record()
	fs, ok := spec(kind).find(f)
	if !ok {
		return 0, l.fail(errors.InvalidInput(errors.PhaseLayout,
			[]string{r.String(), f.String()},
			fmt.Sprintf("%s has no field %s", kind, f)))
	}

	base, err := l.OffsetOf(r, index)
	if err != nil {
		return 0, err
	}

	off := base.I64() + int64(fs.offset(l.ptr))
	narrowed, ok := int32FromInt64(off)
	if !ok {
		return 0, l.fail(errors.NarrowingOverflow(append(indexPath(r, index), f.String()), off))
	}
	return Offset(narrowed), nil
}

// IndexOffset is OffsetOf for a typed index.
func IndexOffset[I Index](l *Layout, i I) (Offset, error) {
	return l.OffsetOf(i.Region(), uint32(i))
}

// IndexFieldOffset is FieldOffsetOf for a typed index.
func IndexFieldOffset[I Index](l *Layout, i I, f Field) (Offset, error) {
	return l.FieldOffsetOf(i.Region(), uint32(i), f)
}

func indexPath(r Region, index uint32) []string {
	return []string{r.String(), strconv.FormatUint(uint64(index), 10)}
}

func (l *Layout) fail(err *errors.Error) error {
	if ce := Logger().Check(zap.DebugLevel, "layout query failed"); ce != nil {
		ce.Write(
			zap.String("kind", string(err.Kind)),
			zap.Strings("path", err.Path),
			zap.String("detail", err.Detail),
			zap.Uint8("pointerSize", uint8(l.ptr)),
		)
	}
	return err
}
