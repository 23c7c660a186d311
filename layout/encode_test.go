package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/wasm-vmctx/errors"
)

func TestEncodeDecode(t *testing.T) {
	for _, ptr := range []PointerSize{Pointer32, Pointer64} {
		l := New(propertyCounts[4], ptr)
		got, err := Decode(l.Encode())
		require.NoError(t, err)
		require.Equal(t, l, got)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	b := New(typicalCounts, Pointer64).Encode()
	b = protowire.AppendTag(b, 100, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("compiler build id"))
	b = protowire.AppendTag(b, 101, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)

	got, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, typicalCounts, got.Counts())
}

func TestDecodeErrors(t *testing.T) {
	t.Run("missing pointer size", func(t *testing.T) {
		_, err := Decode(nil)
		require.True(t, errors.IsKind(err, errors.KindInvalidData), "got %v", err)
	})

	t.Run("bad pointer size", func(t *testing.T) {
		b := protowire.AppendTag(nil, fieldPointerSize, protowire.VarintType)
		b = protowire.AppendVarint(b, 6)
		_, err := Decode(b)
		require.True(t, errors.IsKind(err, errors.KindInvalidData), "got %v", err)
	})

	t.Run("truncated", func(t *testing.T) {
		b := New(typicalCounts, Pointer64).Encode()
		b = append(b, byte(fieldCountsBase)<<3, 0x80)
		_, err := Decode(b)
		require.True(t, errors.IsKind(err, errors.KindInvalidData), "got %v", err)
	})
}
