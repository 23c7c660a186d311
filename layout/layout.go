package layout

import (
	"strconv"

	"go.uber.org/zap"
)

// PointerSize is the target's native pointer width in bytes.
type PointerSize uint8

const (
	Pointer32 PointerSize = 4
	Pointer64 PointerSize = 8
)

// Valid reports whether p is a supported pointer width.
func (p PointerSize) Valid() bool {
	return p == Pointer32 || p == Pointer64
}

func (p PointerSize) String() string {
	return "ptr" + strconv.Itoa(int(p)*8)
}

// Offset is a byte offset into the context block that fits a 32-bit immediate.
type Offset int32

// U32 encodes an Offset as uint32 for convenience.
func (o Offset) U32() uint32 {
	return uint32(o)
}

// I64 encodes an Offset as int64 for convenience.
func (o Offset) I64() int64 {
	return int64(o)
}

// Counts holds the number of entities of each kind a module declares.
type Counts struct {
	SignatureIDs      uint64
	ImportedFunctions uint64
	ImportedTables    uint64
	ImportedMemories  uint64
	ImportedGlobals   uint64
	DefinedTables     uint64
	DefinedMemories   uint64
	DefinedGlobals    uint64
}

// Counts lets a bare Counts value act as a Descriptor.
func (c Counts) Counts() Counts {
	return c
}

// Of returns the count of the region's entities.
func (c Counts) Of(r Region) uint64 {
	switch r {
	case SignatureIDs:
		return c.SignatureIDs
	case ImportedFunctions:
		return c.ImportedFunctions
	case ImportedTables:
		return c.ImportedTables
	case ImportedMemories:
		return c.ImportedMemories
	case ImportedGlobals:
		return c.ImportedGlobals
	case DefinedTables:
		return c.DefinedTables
	case DefinedMemories:
		return c.DefinedMemories
	case DefinedGlobals:
		return c.DefinedGlobals
	}
	panic("layout: unknown region " + r.String())
}

// Descriptor exposes a module's entity counts. The module must be fully
// parsed and validated before it is handed to New.
type Descriptor interface {
	Counts() Counts
}

// Layout answers offset and size queries for one module's context block.
//
// A Layout is an immutable snapshot taken at construction; pass it around by
// pointer and query it from as many goroutines as needed.
type Layout struct {
	counts Counts
	ptr    PointerSize
}

// New captures the descriptor's counts for the given pointer size.
// It performs no validation; identical inputs give identical layouts.
func New(desc Descriptor, ptr PointerSize) *Layout {
	l := &Layout{
		counts: desc.Counts(),
		ptr:    ptr,
	}

	if ce := Logger().Check(zap.DebugLevel, "layout created"); ce != nil {
		ce.Write(
			zap.Uint8("pointerSize", uint8(ptr)),
			zap.Uint64("signatureIDs", l.counts.SignatureIDs),
			zap.Uint64("importedFunctions", l.counts.ImportedFunctions),
			zap.Uint64("importedTables", l.counts.ImportedTables),
			zap.Uint64("importedMemories", l.counts.ImportedMemories),
			zap.Uint64("importedGlobals", l.counts.ImportedGlobals),
			zap.Uint64("definedTables", l.counts.DefinedTables),
			zap.Uint64("definedMemories", l.counts.DefinedMemories),
			zap.Uint64("definedGlobals", l.counts.DefinedGlobals),
		)
	}

	return l
}

// PointerSize returns the pointer width the layout was built for.
func (l *Layout) PointerSize() PointerSize {
	return l.ptr
}

// Counts returns the captured entity counts.
func (l *Layout) Counts() Counts {
	return l.counts
}

// Count returns the number of records in a region.
func (l *Layout) Count(r Region) uint64 {
	return l.counts.Of(r)
}
