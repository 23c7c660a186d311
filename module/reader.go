package module

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/jcalabro/leb128"

	"github.com/wippyai/wasm-vmctx/errors"
)

// reader reads one section payload (or the file header) and reports errors
// with the section name and the absolute file offset.
type reader struct {
	r       *bytes.Reader
	section string
	base    int
	size    int
}

func newReader(data []byte, section string, base int) *reader {
	return &reader{
		r:       bytes.NewReader(data),
		section: section,
		base:    base,
		size:    len(data),
	}
}

// pos returns the absolute offset of the next byte.
func (r *reader) pos() int {
	return r.base + r.size - r.r.Len()
}

func (r *reader) remaining() int {
	return r.r.Len()
}

func (r *reader) fail(cause error, format string, args ...any) error {
	return errors.New(errors.PhaseScan, errors.KindInvalidData).
		Path(r.section).
		Value(r.pos()).
		Detail("%s at offset %d", fmt.Sprintf(format, args...), r.pos()).
		Cause(cause).
		Build()
}

func (r *reader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, r.fail(io.ErrUnexpectedEOF, "read byte")
	}
	return b, nil
}

func (r *reader) readBytes(n uint32) ([]byte, error) {
	if uint64(n) > uint64(r.remaining()) {
		return nil, r.fail(io.ErrUnexpectedEOF, "read %d bytes", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, r.fail(err, "read %d bytes", n)
	}
	return buf, nil
}

func (r *reader) readU32LE() (uint32, error) {
	buf, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *reader) readU64() (uint64, error) {
	v, err := leb128.DecodeU64(r.r)
	if err != nil {
		return 0, r.fail(err, "read LEB128")
	}
	return v, nil
}

func (r *reader) readU32() (uint32, error) {
	v, err := r.readU64()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, r.fail(nil, "u32 value %d out of range", v)
	}
	return uint32(v), nil
}

func (r *reader) readS33() (int64, error) {
	v, err := leb128.DecodeS64(r.r)
	if err != nil {
		return 0, r.fail(err, "read signed LEB128")
	}
	if v < -(1<<32) || v >= 1<<32 {
		return 0, r.fail(nil, "s33 value %d out of range", v)
	}
	return v, nil
}

func (r *reader) skipName() error {
	n, err := r.readU32()
	if err != nil {
		return err
	}
	name, err := r.readBytes(n)
	if err != nil {
		return err
	}
	if !utf8.Valid(name) {
		return r.fail(nil, "invalid UTF-8 in name")
	}
	return nil
}

func (r *reader) skipValType() error {
	b, err := r.readByte()
	if err != nil {
		return err
	}
	if b == valRefNull || b == valRef {
		_, err = r.readS33()
		return err
	}
	if !validValType(b) {
		return r.fail(nil, "invalid value type 0x%02x", b)
	}
	return nil
}

func (r *reader) skipLimits() error {
	flags, err := r.readByte()
	if err != nil {
		return err
	}
	if flags > 0x07 {
		return r.fail(nil, "invalid limits flags 0x%02x", flags)
	}
	if _, err := r.readU64(); err != nil {
		return err
	}
	if flags&0x01 != 0 {
		if _, err := r.readU64(); err != nil {
			return err
		}
	}
	return nil
}
