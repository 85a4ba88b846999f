package cel

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/scigolib/calvin"
)

// Source is the read interface shared by CEL files and in-memory data,
// whatever format they were loaded from.
type Source interface {
	Rows() int
	Cols() int
	NumCells() int

	Intensity(cell int) (float32, error)
	StdDev(cell int) (float32, error)
	Pixels(cell int) (int16, error)
	HasStdDev() bool
	HasPixels() bool

	IsOutlier(x, y int) bool
	IsMasked(x, y int) bool
	NumOutliers() int
	NumMasked() int

	AlgorithmName() string
	// AlgorithmParameter returns the display string of a parameter, or ""
	// when it is absent under both spellings.
	AlgorithmParameter(name string) string
	AlgorithmParameters() calvin.ParameterList
	DATHeader() string
}

var (
	_ Source = dataSource{}
	_ Source = (*File)(nil)
)

func cellError(cell, n int) error {
	return fmt.Errorf("%w: cell %d not in [0, %d)", calvin.ErrIndexOutOfRange, cell, n)
}

// Source returns a read view of d.
func (d *Data) Source() Source {
	return dataSource{d: d, outliers: coordSetOf(d.Outliers), masked: coordSetOf(d.Masked)}
}

type coordSet map[Coord]struct{}

func coordSetOf(cs []Coord) coordSet {
	s := make(coordSet, len(cs))
	for _, c := range cs {
		s[c] = struct{}{}
	}
	return s
}

func (s coordSet) has(x, y int) bool {
	//nolint:gosec // G115: out-of-range coordinates wrap and miss
	_, ok := s[Coord{X: int16(x), Y: int16(y)}]
	return ok
}

// sortedCoords returns the cells of s ordered by row, then column.
func sortedCoords(s coordSet) []Coord {
	return slices.SortedFunc(maps.Keys(s), func(a, b Coord) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
}

type dataSource struct {
	d        *Data
	outliers coordSet
	masked   coordSet
}

func (s dataSource) Rows() int     { return s.d.Rows }
func (s dataSource) Cols() int     { return s.d.Cols }
func (s dataSource) NumCells() int { return s.d.NumCells() }

func (s dataSource) Intensity(cell int) (float32, error) {
	if cell < 0 || cell >= len(s.d.Intensities) {
		return 0, cellError(cell, len(s.d.Intensities))
	}
	return s.d.Intensities[cell], nil
}

func (s dataSource) StdDev(cell int) (float32, error) {
	if cell < 0 || cell >= s.d.NumCells() {
		return 0, cellError(cell, s.d.NumCells())
	}
	if len(s.d.StdDevs) == 0 {
		return 0, nil
	}
	return s.d.StdDevs[cell], nil
}

func (s dataSource) Pixels(cell int) (int16, error) {
	if cell < 0 || cell >= s.d.NumCells() {
		return 0, cellError(cell, s.d.NumCells())
	}
	if len(s.d.Pixels) == 0 {
		return 0, nil
	}
	return s.d.Pixels[cell], nil
}

func (s dataSource) HasStdDev() bool { return len(s.d.StdDevs) > 0 }
func (s dataSource) HasPixels() bool { return len(s.d.Pixels) > 0 }

func (s dataSource) IsOutlier(x, y int) bool { return s.outliers.has(x, y) }
func (s dataSource) IsMasked(x, y int) bool  { return s.masked.has(x, y) }
func (s dataSource) NumOutliers() int        { return len(s.outliers) }
func (s dataSource) NumMasked() int          { return len(s.masked) }

func (s dataSource) AlgorithmName() string { return s.d.AlgorithmName }

func (s dataSource) AlgorithmParameter(name string) string {
	return findAliased(s.d.AlgParams, name)
}

func (s dataSource) AlgorithmParameters() calvin.ParameterList { return s.d.AlgParams.Clone() }

func (s dataSource) DATHeader() string {
	for i := range s.d.Parents {
		if text := datHeaderOf(&s.d.Parents[i]); text != "" {
			return text
		}
	}
	return ""
}

// findAliased looks name up under both of its spellings.
func findAliased(params calvin.ParameterList, name string) string {
	if v, ok := params.Find(name); ok {
		return v.String()
	}
	if alias, ok := ParameterAlias(name); ok {
		return params.FindString(alias)
	}
	return ""
}

// datHeaderOf returns the scan header text carried by h or its nearest
// scan acquisition ancestor.
func datHeaderOf(h *calvin.GenericDataHeader) string {
	if h.FileTypeID != DATFileType {
		p, ok := h.FindParent(DATFileType)
		if !ok {
			return ""
		}
		h = p
	}
	if text := h.Params.FindString(DATHeaderParam); text != "" {
		return text
	}
	return h.Params.FindString(PartialDATHeaderParam)
}
