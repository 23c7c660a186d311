package ctxblock

import (
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	wasmvmctx "github.com/wippyai/wasm-vmctx"
	"github.com/wippyai/wasm-vmctx/errors"
	"github.com/wippyai/wasm-vmctx/layout"
)

// Populate writes img into the context block at base. The block is zeroed
// first so record padding is deterministic.
//
// Nothing is written if the image disagrees with the layout or the block
// does not fit in mem.
func Populate(mem wasmvmctx.Memory, base uint32, l *layout.Layout, img *Image) error {
	regions, err := l.Regions()
	if err != nil {
		return err
	}
	size := regions[len(regions)-1].End()

	for _, ri := range regions {
		if n := uint64(img.count(ri.Region)); n != ri.Count {
			return errors.CountMismatch(errors.PhasePopulate, []string{ri.Region.String()}, n, ri.Count)
		}
	}
	if err := fits(mem, base, size); err != nil {
		return err
	}

	// Values are checked before anything is written.
	err = walk(l, regions, base, img, func(at uint32, f layout.FieldInfo, v uint64, path []string) error {
		if f.Size == 4 && v > math.MaxUint32 {
			e := errors.InvalidInput(errors.PhasePopulate, path, fmt.Sprintf("value %#x does not fit in 4 bytes", v))
			e.Value = v
			return e
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := mem.Write(base, make([]byte, size)); err != nil {
		return err
	}
	err = walk(l, regions, base, img, func(at uint32, f layout.FieldInfo, v uint64, _ []string) error {
		if f.Size == 8 {
			return mem.WriteU64(at, v)
		}
		return mem.WriteU32(at, uint32(v))
	})
	if err != nil {
		return err
	}

	Logger().Debug("context block populated",
		zap.Uint32("base", base),
		zap.Int64("size", size),
		zap.Uint8("pointerSize", uint8(l.PointerSize())))

	return nil
}

// ReadField reads field f of record index in region r from the block at base.
func ReadField(mem wasmvmctx.Memory, base uint32, l *layout.Layout, r layout.Region, index uint32, f layout.Field) (uint64, error) {
	off, err := l.FieldOffsetOf(r, index, f)
	if err != nil {
		return 0, err
	}
	at := uint64(base) + uint64(off.U32())
	if at > math.MaxUint32 {
		return 0, errors.OutOfBounds(errors.PhasePopulate, []string{r.String()}, at, math.MaxUint32)
	}

	if l.FieldSize(r.Record(), f) == 4 {
		v, err := mem.ReadU32(uint32(at))
		return uint64(v), err
	}
	return mem.ReadU64(uint32(at))
}

func fits(mem wasmvmctx.Memory, base uint32, size int64) error {
	end := uint64(base) + uint64(size)
	limit := uint64(math.MaxUint32) + 1
	if s, ok := mem.(wasmvmctx.MemorySizer); ok {
		limit = uint64(s.Size())
	}
	if end > limit {
		return errors.OutOfBounds(errors.PhasePopulate, nil, end, limit)
	}
	return nil
}

// walk visits every field of every record in block order with its absolute
// address. fits must have accepted the block first.
func walk(l *layout.Layout, regions []layout.RegionInfo, base uint32, img *Image, fn func(at uint32, f layout.FieldInfo, v uint64, path []string) error) error {
	for _, ri := range regions {
		rec := l.Record(ri.Record)
		for i := uint64(0); i < ri.Count; i++ {
			at := base + uint32(ri.Start) + uint32(i)*uint32(ri.RecordSize)
			for _, f := range rec.Fields {
				v := img.value(ri.Region, int(i), f.Field)
				path := []string{ri.Region.String(), strconv.FormatUint(i, 10), f.Field.String()}
				if err := fn(at+uint32(f.Offset), f, v, path); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
