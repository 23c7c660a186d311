// Package module derives the entity counts the context block layout needs from
// a WebAssembly binary.
//
// Scan walks the section headers and counts types, imports by kind and
// defined functions, tables, memories, globals and tags. It does not decode
// function bodies or constant expressions.
//
//	info, err := module.Scan(data)
//	l := layout.New(info, layout.Pointer64)
//
// Load validates the binary with wazero before scanning it, so the counts are
// taken only from a module that is known to be final and well-formed:
//
//	info, err := module.Load(ctx, data)
package module
