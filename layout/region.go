package layout

import (
	"fmt"

	"github.com/wippyai/wasm-vmctx/errors"
)

// Region is a contiguous run of same-kind records in the context block.
type Region uint8

// Regions are declared in context block order. Reordering them changes the
// binary contract with the code that builds the block.
const (
	SignatureIDs Region = iota
	ImportedFunctions
	ImportedTables
	ImportedMemories
	ImportedGlobals
	DefinedTables
	DefinedMemories
	DefinedGlobals

	numRegions
)

var regionNames = [numRegions]string{
	SignatureIDs:      "signature_ids",
	ImportedFunctions: "imported_functions",
	ImportedTables:    "imported_tables",
	ImportedMemories:  "imported_memories",
	ImportedGlobals:   "imported_globals",
	DefinedTables:     "defined_tables",
	DefinedMemories:   "defined_memories",
	DefinedGlobals:    "defined_globals",
}

// regionRecords is the region half of the context block contract.
var regionRecords = [numRegions]RecordKind{
	SignatureIDs:      SignatureID,
	ImportedFunctions: FunctionImport,
	ImportedTables:    TableImport,
	ImportedMemories:  MemoryImport,
	ImportedGlobals:   GlobalImport,
	DefinedTables:     TableDefinition,
	DefinedMemories:   MemoryDefinition,
	DefinedGlobals:    GlobalDefinition,
}

func (r Region) String() string {
	if r < numRegions {
		return regionNames[r]
	}
	return fmt.Sprintf("region(%d)", uint8(r))
}

// Record returns the kind of record the region holds.
func (r Region) Record() RecordKind {
	if r >= numRegions {
		panic("layout: unknown region " + r.String())
	}
	return regionRecords[r]
}

// ParseRegion maps a region name as printed by String back to the Region.
func ParseRegion(s string) (Region, bool) {
	for i, name := range regionNames {
		if name == s {
			return Region(i), true
		}
	}
	return 0, false
}

// AllRegions returns every region in context block order.
func AllRegions() []Region {
	regions := make([]Region, numRegions)
	for i := range regions {
		regions[i] = Region(i)
	}
	return regions
}

// RegionInfo is one row of the context block's region table.
type RegionInfo struct {
	Start      int64
	Size       int64
	Count      uint64
	Region     Region
	Record     RecordKind
	RecordSize uint8
}

// End returns the offset just past the region.
func (ri RegionInfo) End() int64 {
	return ri.Start + ri.Size
}

// RegionSize returns count × record size for the region.
func (l *Layout) RegionSize(r Region) (int64, error) {
	count, ok := int64FromUint64(l.counts.Of(r))
	if !ok {
		return 0, l.fail(errors.ArithmeticOverflow([]string{r.String()}, "region count"))
	}
	size, ok := mulInt64(count, int64(l.RecordSize(r.Record())))
	if !ok {
		return 0, l.fail(errors.ArithmeticOverflow([]string{r.String()}, "count * record size"))
	}
	return size, nil
}

// RegionStart returns the offset of the region's first record: the sum of the
// sizes of all regions declared before it.
func (l *Layout) RegionStart(r Region) (int64, error) {
	if r >= numRegions {
		panic("layout: unknown region " + r.String())
	}
	var start int64
	for prev := Region(0); prev < r; prev++ {
		size, err := l.RegionSize(prev)
		if err != nil {
			return 0, err
		}
		var ok bool
		if start, ok = addInt64(start, size); !ok {
			return 0, l.fail(errors.ArithmeticOverflow([]string{r.String()}, "region start"))
		}
	}
	return start, nil
}

// Size returns the total size of the context block.
func (l *Layout) Size() (int64, error) {
	last := numRegions - 1
	start, err := l.RegionStart(last)
	if err != nil {
		return 0, err
	}
	size, err := l.RegionSize(last)
	if err != nil {
		return 0, err
	}
	total, ok := addInt64(start, size)
	if !ok {
		return 0, l.fail(errors.ArithmeticOverflow(nil, "context size"))
	}
	return total, nil
}

// Regions returns the full region table in context block order.
func (l *Layout) Regions() ([]RegionInfo, error) {
	infos := make([]RegionInfo, 0, numRegions)
	var start int64
	for r := Region(0); r < numRegions; r++ {
		size, err := l.RegionSize(r)
		if err != nil {
			return nil, err
		}
		kind := r.Record()
		infos = append(infos, RegionInfo{
			Region:     r,
			Record:     kind,
			Count:      l.counts.Of(r),
			RecordSize: l.RecordSize(kind),
			Start:      start,
			Size:       size,
		})
		var ok bool
		if start, ok = addInt64(start, size); !ok {
			return nil, l.fail(errors.ArithmeticOverflow([]string{r.String()}, "region end"))
		}
	}
	return infos, nil
}
