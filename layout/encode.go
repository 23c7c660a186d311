package layout

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/wasm-vmctx/errors"
)

// Snapshot field numbers. Region counts follow the pointer size in region
// order, so a region's field number is fieldCountsBase + region.
const (
	fieldPointerSize protowire.Number = 1
	fieldCountsBase  protowire.Number = 2
)

// Encode serializes the layout inputs in protobuf wire format so that the
// layout can be stored next to a compiled artifact and rebuilt with Decode.
func (l *Layout) Encode() []byte {
	b := make([]byte, 0, 2+int(numRegions)*3)
	b = protowire.AppendTag(b, fieldPointerSize, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(l.ptr))
	for r := Region(0); r < numRegions; r++ {
		b = protowire.AppendTag(b, fieldCountsBase+protowire.Number(r), protowire.VarintType)
		b = protowire.AppendVarint(b, l.counts.Of(r))
	}
	return b
}

// Decode rebuilds a layout from the output of Encode. Unknown fields are
// skipped.
func Decode(data []byte) (*Layout, error) {
	var (
		ptr    uint64
		counts Counts
	)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, protowire.ParseError(n), "read tag")
		}
		data = data[n:]

		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, protowire.ParseError(n), "skip field")
			}
			data = data[n:]
			continue
		}

		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, protowire.ParseError(n), "read varint")
		}
		data = data[n:]

		switch {
		case num == fieldPointerSize:
			ptr = v
		case num >= fieldCountsBase && num < fieldCountsBase+protowire.Number(numRegions):
			counts.set(Region(num-fieldCountsBase), v)
		}
	}

	if ptr > 0xff || !PointerSize(ptr).Valid() {
		return nil, errors.InvalidData(errors.PhaseEncode, []string{"pointer_size"}, "unsupported pointer size")
	}
	return New(counts, PointerSize(ptr)), nil
}

func (c *Counts) set(r Region, v uint64) {
	switch r {
	case SignatureIDs:
		c.SignatureIDs = v
	case ImportedFunctions:
		c.ImportedFunctions = v
	case ImportedTables:
		c.ImportedTables = v
	case ImportedMemories:
		c.ImportedMemories = v
	case ImportedGlobals:
		c.ImportedGlobals = v
	case DefinedTables:
		c.DefinedTables = v
	case DefinedMemories:
		c.DefinedMemories = v
	case DefinedGlobals:
		c.DefinedGlobals = v
	}
}
