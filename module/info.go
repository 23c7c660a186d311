package module

import "github.com/wippyai/wasm-vmctx/layout"

// Info holds the entity counts of a module.
type Info struct {
	Types            uint32
	ImportedFuncs    uint32
	ImportedTables   uint32
	ImportedMemories uint32
	ImportedGlobals  uint32
	ImportedTags     uint32
	Funcs            uint32 // defined
	Tables           uint32 // defined
	Memories         uint32 // defined
	Globals          uint32 // defined
	Tags             uint32 // defined
	Exports          uint32
}

// Counts implements layout.Descriptor. Every declared type is a function
// signature since GC type definitions are rejected by Scan.
func (m *Info) Counts() layout.Counts {
	return layout.Counts{
		SignatureIDs:      uint64(m.Types),
		ImportedFunctions: uint64(m.ImportedFuncs),
		ImportedTables:    uint64(m.ImportedTables),
		ImportedMemories:  uint64(m.ImportedMemories),
		ImportedGlobals:   uint64(m.ImportedGlobals),
		DefinedTables:     uint64(m.Tables),
		DefinedMemories:   uint64(m.Memories),
		DefinedGlobals:    uint64(m.Globals),
	}
}

// NumFuncs returns the size of the function index space.
func (m *Info) NumFuncs() uint64 {
	return uint64(m.ImportedFuncs) + uint64(m.Funcs)
}

// NumTables returns the size of the table index space.
func (m *Info) NumTables() uint64 {
	return uint64(m.ImportedTables) + uint64(m.Tables)
}

// NumMemories returns the size of the memory index space.
func (m *Info) NumMemories() uint64 {
	return uint64(m.ImportedMemories) + uint64(m.Memories)
}

// NumGlobals returns the size of the global index space.
func (m *Info) NumGlobals() uint64 {
	return uint64(m.ImportedGlobals) + uint64(m.Globals)
}
