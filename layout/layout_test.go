package layout

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-vmctx/errors"
)

var typicalCounts = Counts{
	SignatureIDs:      2,
	ImportedFunctions: 1,
	DefinedTables:     1,
	DefinedMemories:   1,
	DefinedGlobals:    1,
}

func TestRegionTable(t *testing.T) {
	l := New(typicalCounts, Pointer64)

	for _, tc := range []struct {
		region      Region
		start, size int64
	}{
		{SignatureIDs, 0, 8},
		{ImportedFunctions, 8, 16},
		{ImportedTables, 24, 0},
		{ImportedMemories, 24, 0},
		{ImportedGlobals, 24, 0},
		{DefinedTables, 24, 16},
		{DefinedMemories, 40, 16},
		{DefinedGlobals, 56, 8},
	} {
		t.Run(tc.region.String(), func(t *testing.T) {
			start, err := l.RegionStart(tc.region)
			require.NoError(t, err)
			require.Equal(t, tc.start, start)

			size, err := l.RegionSize(tc.region)
			require.NoError(t, err)
			require.Equal(t, tc.size, size)
		})
	}

	total, err := l.Size()
	require.NoError(t, err)
	require.Equal(t, int64(64), total)
}

func TestDefinedMemoryOffset(t *testing.T) {
	l := New(typicalCounts, Pointer64)

	off, err := IndexOffset(l, DefinedMemoryIndex(0))
	require.NoError(t, err)
	require.Equal(t, Offset(40), off)

	_, err = IndexOffset(l, DefinedMemoryIndex(1))
	require.Error(t, err)
	require.True(t, errors.IsKind(err, errors.KindOutOfRange))
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLayout, Kind: errors.KindOutOfRange})
}

func TestOverflow(t *testing.T) {
	t.Run("index product", func(t *testing.T) {
		l := New(Counts{DefinedMemories: 1 << 32}, Pointer64)
		_, err := l.OffsetOf(DefinedMemories, 1<<28)
		require.True(t, errors.IsKind(err, errors.KindArithmeticOverflow), "got %v", err)
	})

	t.Run("region size", func(t *testing.T) {
		l := New(Counts{SignatureIDs: 1 << 62}, Pointer64)
		_, err := l.RegionStart(ImportedFunctions)
		require.True(t, errors.IsKind(err, errors.KindArithmeticOverflow), "got %v", err)

		_, err = l.OffsetOf(ImportedFunctions, 0)
		require.True(t, errors.IsKind(err, errors.KindOutOfRange), "got %v", err)

		_, err = l.Size()
		require.True(t, errors.IsKind(err, errors.KindArithmeticOverflow), "got %v", err)
	})

	t.Run("count beyond int64", func(t *testing.T) {
		l := New(Counts{ImportedGlobals: math.MaxUint64, DefinedTables: 1}, Pointer32)
		_, err := l.RegionStart(DefinedTables)
		require.True(t, errors.IsKind(err, errors.KindArithmeticOverflow), "got %v", err)

		_, err = IndexOffset(l, DefinedTableIndex(0))
		require.True(t, errors.IsKind(err, errors.KindArithmeticOverflow), "got %v", err)

		_, err = l.Regions()
		require.Error(t, err)
	})

	t.Run("region start sum", func(t *testing.T) {
		l := New(Counts{SignatureIDs: 1 << 60, ImportedFunctions: 1 << 58}, Pointer64)
		_, err := l.RegionStart(ImportedTables)
		require.True(t, errors.IsKind(err, errors.KindArithmeticOverflow), "got %v", err)
	})

	t.Run("narrowing region start", func(t *testing.T) {
		l := New(Counts{SignatureIDs: 1 << 30, ImportedFunctions: 1}, Pointer64)
		start, err := l.RegionStart(ImportedFunctions)
		require.NoError(t, err)
		require.Equal(t, int64(1)<<32, start)

		_, err = IndexOffset(l, FuncIndex(0))
		require.True(t, errors.IsKind(err, errors.KindNarrowingOverflow), "got %v", err)
	})

	t.Run("narrowing index", func(t *testing.T) {
		l := New(Counts{SignatureIDs: 1 << 30}, Pointer64)
		off, err := IndexOffset(l, SignatureIndex(1<<29-1))
		require.NoError(t, err)
		require.Equal(t, Offset(1<<31-4), off)

		_, err = IndexOffset(l, SignatureIndex(1<<29))
		require.True(t, errors.IsKind(err, errors.KindNarrowingOverflow), "got %v", err)
	})

	t.Run("narrowing field", func(t *testing.T) {
		l := New(Counts{SignatureIDs: 536870911, ImportedFunctions: 1}, Pointer64)

		off, err := IndexFieldOffset(l, FuncIndex(0), FieldBody)
		require.NoError(t, err)
		require.Equal(t, Offset(2147483644), off)

		_, err = IndexFieldOffset(l, FuncIndex(0), FieldVMContext)
		require.True(t, errors.IsKind(err, errors.KindNarrowingOverflow), "got %v", err)
	})
}

func TestNewSnapshot(t *testing.T) {
	counts := Counts{SignatureIDs: 3, ImportedMemories: 2, DefinedGlobals: 5}
	a := New(counts, Pointer32)
	b := New(counts, Pointer32)
	require.Equal(t, a, b)

	counts.SignatureIDs = 100
	require.Equal(t, uint64(3), a.Counts().SignatureIDs)
	require.Equal(t, Pointer32, a.PointerSize())

	// A layout is itself a descriptor.
	c := New(a, Pointer64)
	require.Equal(t, a.Counts(), c.Counts())
	require.Equal(t, Pointer64, c.PointerSize())
}

var propertyCounts = []Counts{
	{},
	typicalCounts,
	{SignatureIDs: 1},
	{ImportedGlobals: 7, DefinedGlobals: 3},
	{SignatureIDs: 13, ImportedFunctions: 5, ImportedTables: 2, ImportedMemories: 1, ImportedGlobals: 9, DefinedTables: 3, DefinedMemories: 2, DefinedGlobals: 17},
	{ImportedTables: 1000, DefinedMemories: 4096},
}

func TestRegionStartsAreCumulative(t *testing.T) {
	for _, ptr := range []PointerSize{Pointer32, Pointer64} {
		for _, counts := range propertyCounts {
			l := New(counts, ptr)

			var want, prev int64
			for _, r := range AllRegions() {
				start, err := l.RegionStart(r)
				require.NoError(t, err)
				require.Equal(t, want, start, "%s at pointer size %d", r, ptr)
				require.GreaterOrEqual(t, start, prev)
				prev = start
				want += int64(counts.Of(r)) * int64(l.RecordSize(r.Record()))
			}

			total, err := l.Size()
			require.NoError(t, err)
			require.Equal(t, want, total)

			infos, err := l.Regions()
			require.NoError(t, err)
			require.Len(t, infos, len(AllRegions()))
			last := infos[len(infos)-1]
			require.Equal(t, total, last.End())
			for i, info := range infos {
				start, err := l.RegionStart(info.Region)
				require.NoError(t, err)
				require.Equal(t, start, info.Start)
				require.Equal(t, Region(i), info.Region)
				require.Equal(t, info.Region.Record(), info.Record)
				require.Equal(t, counts.Of(info.Region), info.Count)
			}
		}
	}
}

func TestOffsetOfIsStrictlyIncreasing(t *testing.T) {
	for _, ptr := range []PointerSize{Pointer32, Pointer64} {
		counts := propertyCounts[4]
		l := New(counts, ptr)

		for _, r := range AllRegions() {
			start, err := l.RegionStart(r)
			require.NoError(t, err)
			size := int64(l.RecordSize(r.Record()))

			prev := Offset(-1)
			for i := uint32(0); uint64(i) < counts.Of(r); i++ {
				off, err := l.OffsetOf(r, i)
				require.NoError(t, err)
				require.Equal(t, start+int64(i)*size, off.I64())
				require.Greater(t, off, prev)
				prev = off
			}

			_, err = l.OffsetOf(r, uint32(counts.Of(r)))
			require.True(t, errors.IsKind(err, errors.KindOutOfRange), "%s: got %v", r, err)
		}
	}
}

func TestFieldOffsetOf(t *testing.T) {
	l := New(typicalCounts, Pointer64)

	for _, tc := range []struct {
		region Region
		index  uint32
		field  Field
		want   Offset
	}{
		{SignatureIDs, 1, FieldSignatureID, 4},
		{ImportedFunctions, 0, FieldBody, 8},
		{ImportedFunctions, 0, FieldVMContext, 16},
		{DefinedTables, 0, FieldBase, 24},
		{DefinedTables, 0, FieldCurrentElements, 32},
		{DefinedMemories, 0, FieldBase, 40},
		{DefinedMemories, 0, FieldCurrentLength, 48},
		{DefinedGlobals, 0, FieldValue, 56},
	} {
		off, err := l.FieldOffsetOf(tc.region, tc.index, tc.field)
		require.NoError(t, err)
		require.Equal(t, tc.want, off, "%s[%d].%s", tc.region, tc.index, tc.field)
	}

	_, err := l.FieldOffsetOf(DefinedMemories, 0, FieldCurrentElements)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseLayout, Kind: errors.KindInvalidInput})
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, []string{"defined_memories", "current_elements"}, e.Path)

	_, err = IndexFieldOffset(l, DefinedMemoryIndex(1), FieldBase)
	require.True(t, errors.IsKind(err, errors.KindOutOfRange), "got %v", err)
}

func TestTypedIndexRegions(t *testing.T) {
	require.Equal(t, SignatureIDs, SignatureIndex(0).Region())
	require.Equal(t, ImportedFunctions, FuncIndex(0).Region())
	require.Equal(t, ImportedTables, TableIndex(0).Region())
	require.Equal(t, ImportedMemories, MemoryIndex(0).Region())
	require.Equal(t, ImportedGlobals, GlobalIndex(0).Region())
	require.Equal(t, DefinedTables, DefinedTableIndex(0).Region())
	require.Equal(t, DefinedMemories, DefinedMemoryIndex(0).Region())
	require.Equal(t, DefinedGlobals, DefinedGlobalIndex(0).Region())
}

func TestConcurrentQueries(t *testing.T) {
	counts := propertyCounts[4]
	l := New(counts, Pointer64)

	want := make(map[Region][]Offset)
	for _, r := range AllRegions() {
		for i := uint32(0); uint64(i) < counts.Of(r); i++ {
			want[r] = append(want[r], Must(l.OffsetOf(r, i)))
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, r := range AllRegions() {
				for i, exp := range want[r] {
					off, err := l.OffsetOf(r, uint32(i))
					if err != nil || off != exp {
						t.Errorf("%s[%d] = %d, %v; want %d", r, i, off, err, exp)
					}
				}
			}
		}()
	}
	wg.Wait()
}
