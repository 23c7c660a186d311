// Package wasmvmctx computes and populates the VM context block that
// ahead-of-time and JIT compiled WebAssembly code addresses directly.
//
// # Architecture Overview
//
//	wasmvmctx/         Root package with the Memory interface
//	├── layout/        Record, region and per-index offsets of the context block
//	├── module/        Entity counts from a WebAssembly binary
//	├── ctxblock/      Writes and reads context blocks through a layout
//	├── errors/        Structured error types
//	└── cmd/vmctx/     Command line inspector
//
// # Quick Start
//
//	info, err := module.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := layout.New(info, layout.Pointer64)
//	size, err := l.Size()
//	off, err := layout.IndexFieldOffset(l, layout.DefinedMemoryIndex(0), layout.FieldCurrentLength)
//
// A code generator shares one *layout.Layout between all the functions of a
// module. The runtime side fills a block with ctxblock.Populate using the same
// layout, so both halves agree on region order and record shape.
package wasmvmctx
