// Package compare diffs two CEL files field by field, as done when
// validating a migration from GCOS to Calvin files.
package compare

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/scigolib/calvin/cel"
)

// HeaderCell marks a Difference that is not tied to a cell.
const HeaderCell = -1

// Options selects what CompareCEL checks.
type Options struct {
	FailFast      bool    // stop at the first difference
	CompareStdDev bool    // also compare standard deviations
	IgnoreMasks   bool    // skip masked cell lists
	IgnoreHeader  bool    // skip algorithm name, parameters and scan header
	Tolerance     float64 // allowed absolute difference of numeric values
}

// Difference is one mismatching field.
type Difference struct {
	Field    string
	Cell     int // HeaderCell for header fields
	Expected string
	Actual   string
}

func (d Difference) String() string {
	if d.Cell == HeaderCell {
		return fmt.Sprintf("%s: expected %q, got %q", d.Field, d.Expected, d.Actual)
	}
	return fmt.Sprintf("%s of cell %d: expected %s, got %s", d.Field, d.Cell, d.Expected, d.Actual)
}

func headerDiff(field, expected, actual string) Difference {
	return Difference{Field: field, Cell: HeaderCell, Expected: expected, Actual: actual}
}

// IntensityStats summarizes the absolute intensity differences over all
// compared cells.
type IntensityStats struct {
	Cells   int
	MeanAbs float64
	MaxAbs  float64
}

// Report is the outcome of a comparison.
type Report struct {
	Expected, Actual string // file names, when known
	Options          Options
	Differences      []Difference
	Intensity        IntensityStats
	Stopped          bool // FailFast ended the comparison early
}

// Match reports whether no difference was found.
func (r *Report) Match() bool { return len(r.Differences) == 0 }

var errStop = errors.New("stop")

type comparer struct {
	opts Options
	r    *Report
}

// add records d and returns errStop when FailFast is set.
func (c *comparer) add(d Difference) error {
	c.r.Differences = append(c.r.Differences, d)
	if c.opts.FailFast {
		c.r.Stopped = true
		return errStop
	}
	return nil
}

// CompareCEL compares actual against expected. Read failures are returned
// as errors; everything else ends up in the report.
func CompareCEL(expected, actual cel.Source, opts Options) (*Report, error) {
	c := &comparer{opts: opts, r: &Report{Options: opts}}
	err := c.run(expected, actual)
	if err != nil && !errors.Is(err, errStop) {
		return c.r, err
	}
	return c.r, nil
}

func (c *comparer) run(e, a cel.Source) error {
	if e.Rows() != a.Rows() || e.Cols() != a.Cols() {
		return c.add(headerDiff("dimensions",
			fmt.Sprintf("%dx%d", e.Cols(), e.Rows()),
			fmt.Sprintf("%dx%d", a.Cols(), a.Rows())))
	}
	if !c.opts.IgnoreHeader {
		if err := c.header(e, a); err != nil {
			return err
		}
	}
	if err := c.cells(e, a); err != nil {
		return err
	}
	return c.coords(e, a)
}

func (c *comparer) header(e, a cel.Source) error {
	if e.AlgorithmName() != a.AlgorithmName() {
		if err := c.add(headerDiff("algorithm name", e.AlgorithmName(), a.AlgorithmName())); err != nil {
			return err
		}
	}

	seen := make(map[string]bool)
	ep := e.AlgorithmParameters()
	for name, v := range ep.All() {
		canon := cel.CanonicalParameterName(name)
		seen[canon] = true
		want := v.String()
		got := a.AlgorithmParameter(name)
		if !c.sameParam(want, got) {
			if err := c.add(headerDiff("parameter "+canon, want, got)); err != nil {
				return err
			}
		}
	}
	ap := a.AlgorithmParameters()
	for name, v := range ap.All() {
		canon := cel.CanonicalParameterName(name)
		if seen[canon] {
			continue
		}
		if err := c.add(headerDiff("parameter "+canon, "", v.String())); err != nil {
			return err
		}
	}

	for _, d := range CompareDATHeaders(e.DATHeader(), a.DATHeader()) {
		if err := c.add(d); err != nil {
			return err
		}
	}
	return nil
}

// sameParam compares numerically within the tolerance when both values are
// numbers, and as text otherwise.
func (c *comparer) sameParam(want, got string) bool {
	if want == got {
		return true
	}
	x, errx := strconv.ParseFloat(want, 64)
	y, erry := strconv.ParseFloat(got, 64)
	if errx != nil || erry != nil {
		return false
	}
	return math.Abs(x-y) <= c.opts.Tolerance
}

func (c *comparer) differs(x, y float32) bool {
	return math.Abs(float64(x)-float64(y)) > c.opts.Tolerance
}

func formatFloat(v float32) string { return strconv.FormatFloat(float64(v), 'f', 6, 32) }

func (c *comparer) cells(e, a cel.Source) error {
	n := e.NumCells()
	diffs := make([]float64, 0, n)
	defer func() { c.r.Intensity = summarize(diffs) }()

	stdDev := c.opts.CompareStdDev && (e.HasStdDev() || a.HasStdDev())
	pixels := e.HasPixels() || a.HasPixels()
	for i := range n {
		x, err := e.Intensity(i)
		if err != nil {
			return err
		}
		y, err := a.Intensity(i)
		if err != nil {
			return err
		}
		diffs = append(diffs, math.Abs(float64(x)-float64(y)))
		if c.differs(x, y) {
			if err := c.add(Difference{Field: "intensity", Cell: i, Expected: formatFloat(x), Actual: formatFloat(y)}); err != nil {
				return err
			}
		}

		if stdDev {
			if x, err = e.StdDev(i); err != nil {
				return err
			}
			if y, err = a.StdDev(i); err != nil {
				return err
			}
			if c.differs(x, y) {
				if err := c.add(Difference{Field: "stdev", Cell: i, Expected: formatFloat(x), Actual: formatFloat(y)}); err != nil {
					return err
				}
			}
		}

		if pixels {
			p, err := e.Pixels(i)
			if err != nil {
				return err
			}
			q, err := a.Pixels(i)
			if err != nil {
				return err
			}
			if p != q {
				d := Difference{Field: "pixels", Cell: i, Expected: strconv.Itoa(int(p)), Actual: strconv.Itoa(int(q))}
				if err := c.add(d); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func summarize(diffs []float64) IntensityStats {
	if len(diffs) == 0 {
		return IntensityStats{}
	}
	return IntensityStats{Cells: len(diffs), MeanAbs: stat.Mean(diffs, nil), MaxAbs: floats.Max(diffs)}
}

// coords compares the outlier and, unless ignored, the masked cell flags.
func (c *comparer) coords(e, a cel.Source) error {
	type flag struct {
		field string
		count func(cel.Source) int
		has   func(s cel.Source, x, y int) bool
	}
	flags := []flag{{"outlier", cel.Source.NumOutliers, cel.Source.IsOutlier}}
	if !c.opts.IgnoreMasks {
		flags = append(flags, flag{"masked", cel.Source.NumMasked, cel.Source.IsMasked})
	}

	cols := e.Cols()
	for _, f := range flags {
		if ne, na := f.count(e), f.count(a); ne != na {
			if err := c.add(headerDiff(f.field+" count", strconv.Itoa(ne), strconv.Itoa(na))); err != nil {
				return err
			}
		}
		if cols == 0 {
			continue
		}
		for i := range e.NumCells() {
			x, y := i%cols, i/cols
			if fe, fa := f.has(e, x, y), f.has(a, x, y); fe != fa {
				d := Difference{Field: f.field, Cell: i, Expected: strconv.FormatBool(fe), Actual: strconv.FormatBool(fa)}
				if err := c.add(d); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
