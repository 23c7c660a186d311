// Package ctxblock writes and reads VM context blocks through a layout.
//
// The caller owns the memory. Populate only places records at the offsets
// the layout dictates, walking the same region and record tables a code
// generator queries, so a block written here always matches compiled code
// built against the same layout.
//
//	mem := ctxblock.WrapMemory(instance.ExportedMemory("memory"))
//	err := ctxblock.Populate(mem, base, l, &ctxblock.Image{...})
package ctxblock
