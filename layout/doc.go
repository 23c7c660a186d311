// Package layout computes the binary layout of the VM context block that
// compiled WebAssembly code addresses directly.
//
// The context block is a sequence of regions, always in this order:
//
//	signature ids         4 bytes each
//	imported functions    body, vmctx            2*P
//	imported tables       from, vmctx            2*P
//	imported memories     from, vmctx            2*P
//	imported globals      from                   P
//	defined tables        base, current_elements 2*P
//	defined memories      base, current_length   2*P
//	defined globals       value                  8 bytes each
//
// where P is the target pointer size. The order and the record table are the
// contract shared with whatever builds the block at runtime; the ctxblock
// package writes blocks through the same tables.
//
// # Usage
//
//	l := layout.New(info, layout.Pointer64)
//	off, err := layout.IndexFieldOffset(l, layout.DefinedMemoryIndex(0), layout.FieldCurrentLength)
//
// A Layout never changes after New and may be shared by any number of
// goroutines compiling functions of the same module.
//
// # Failures
//
// Region and index arithmetic is checked. An index not below its region count
// fails with errors.KindOutOfRange, a product or sum that leaves its domain
// fails with errors.KindArithmeticOverflow, and an offset that does not fit a
// 32-bit immediate fails with errors.KindNarrowingOverflow. Code generators that
// prefer to abort by panic can use Must and recover with Error at the
// compilation unit boundary.
package layout
