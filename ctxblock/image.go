package ctxblock

import "github.com/wippyai/wasm-vmctx/layout"

// FunctionImport is the runtime view of an imported function: the code to
// call and the context block of the instance that defines it.
type FunctionImport struct {
	Body      uint64
	VMContext uint64
}

// Import points at a table or memory definition owned by another instance.
type Import struct {
	From      uint64
	VMContext uint64
}

// TableDefinition is a table owned by the instance.
type TableDefinition struct {
	Base            uint64
	CurrentElements uint32
}

// MemoryDefinition is a linear memory owned by the instance.
type MemoryDefinition struct {
	Base          uint64
	CurrentLength uint32
}

// Image holds the values of every record in a context block. Each slice
// length must equal the count of the matching region.
type Image struct {
	SignatureIDs    []uint32
	FunctionImports []FunctionImport
	TableImports    []Import
	MemoryImports   []Import
	GlobalImports   []uint64 // addresses of the defining instances' globals
	Tables          []TableDefinition
	Memories        []MemoryDefinition
	Globals         []uint64 // raw 8 byte values
}

func (img *Image) count(r layout.Region) int {
	switch r {
	case layout.SignatureIDs:
		return len(img.SignatureIDs)
	case layout.ImportedFunctions:
		return len(img.FunctionImports)
	case layout.ImportedTables:
		return len(img.TableImports)
	case layout.ImportedMemories:
		return len(img.MemoryImports)
	case layout.ImportedGlobals:
		return len(img.GlobalImports)
	case layout.DefinedTables:
		return len(img.Tables)
	case layout.DefinedMemories:
		return len(img.Memories)
	case layout.DefinedGlobals:
		return len(img.Globals)
	}
	panic("ctxblock: unknown region " + r.String())
}

// value returns field f of record i in region r. The field always comes from
// the region's record table.
func (img *Image) value(r layout.Region, i int, f layout.Field) uint64 {
	switch r {
	case layout.SignatureIDs:
		return uint64(img.SignatureIDs[i])
	case layout.ImportedFunctions:
		if f == layout.FieldBody {
			return img.FunctionImports[i].Body
		}
		return img.FunctionImports[i].VMContext
	case layout.ImportedTables:
		return img.TableImports[i].field(f)
	case layout.ImportedMemories:
		return img.MemoryImports[i].field(f)
	case layout.ImportedGlobals:
		return img.GlobalImports[i]
	case layout.DefinedTables:
		if f == layout.FieldBase {
			return img.Tables[i].Base
		}
		return uint64(img.Tables[i].CurrentElements)
	case layout.DefinedMemories:
		if f == layout.FieldBase {
			return img.Memories[i].Base
		}
		return uint64(img.Memories[i].CurrentLength)
	case layout.DefinedGlobals:
		return img.Globals[i]
	}
	panic("ctxblock: unknown region " + r.String())
}

func (imp Import) field(f layout.Field) uint64 {
	if f == layout.FieldFrom {
		return imp.From
	}
	return imp.VMContext
}
