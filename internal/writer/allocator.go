// Package writer provides Calvin file writing infrastructure.
//
// The Allocator hands out consecutive file regions as a skeleton is
// written front to back, and remembers what each region holds so a
// finished layout can be checked for overlaps.
package writer

import (
	"fmt"
	"sort"

	"github.com/scigolib/calvin/internal/utils"
)

// Region is an allocated span of the file.
type Region struct {
	Label  string // what the span holds, e.g. "dataset Intensity rows"
	Offset uint64
	Size   uint64
}

// End returns the first byte after the region.
func (r Region) End() uint64 { return r.Offset + r.Size }

// Allocator manages end-of-file allocation for a file being written.
//
// Regions are never reused or freed. Zero-size regions are recorded, since
// an empty data set still has a position in the layout.
//
// Not thread-safe.
type Allocator struct {
	regions    []Region
	nextOffset uint64
}

// NewAllocator creates an allocator whose first region starts at initialOffset.
func NewAllocator(initialOffset uint64) *Allocator {
	return &Allocator{
		regions:    make([]Region, 0, 16),
		nextOffset: initialOffset,
	}
}

// Allocate reserves size bytes at the end of the file and returns their offset.
// Allocations past the u32 offset range are rejected.
func (a *Allocator) Allocate(label string, size uint64) (uint64, error) {
	addr := a.nextOffset
	if err := utils.CheckOffset(addr + size); err != nil {
		return 0, fmt.Errorf("allocate %s: %w", label, err)
	}
	a.regions = append(a.regions, Region{Label: label, Offset: addr, Size: size})
	a.nextOffset = addr + size
	return addr, nil
}

// IsAllocated reports whether [offset, offset+size) overlaps an allocated region.
// Zero-size ranges never overlap.
func (a *Allocator) IsAllocated(offset, size uint64) bool {
	if size == 0 {
		return false
	}
	end := offset + size
	for _, r := range a.regions {
		if offset < r.End() && r.Offset < end {
			return true
		}
	}
	return false
}

// EndOfFile returns the offset of the next allocation.
func (a *Allocator) EndOfFile() uint64 {
	return a.nextOffset
}

// Regions returns a copy of all regions sorted by offset.
func (a *Allocator) Regions() []Region {
	regions := make([]Region, len(a.regions))
	copy(regions, a.regions)
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Offset < regions[j].Offset
	})
	return regions
}

// ValidateNoOverlaps checks that no two regions overlap and that the
// regions tile the file without gaps from the first offset to EndOfFile.
func (a *Allocator) ValidateNoOverlaps() error {
	regions := a.Regions()
	for i := 0; i+1 < len(regions); i++ {
		cur, next := regions[i], regions[i+1]
		if cur.End() > next.Offset {
			return fmt.Errorf("overlap detected: %s [%d,%d) overlaps %s at %d",
				cur.Label, cur.Offset, cur.End(), next.Label, next.Offset)
		}
		if cur.End() < next.Offset {
			return fmt.Errorf("gap detected: %s ends at %d, %s starts at %d",
				cur.Label, cur.End(), next.Label, next.Offset)
		}
	}
	return nil
}
