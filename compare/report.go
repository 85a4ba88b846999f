package compare

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/scigolib/calvin/cel"
)

// ReportSuffix is appended to the compared file name to name the report.
const ReportSuffix = ".comparison"

// ReportPath returns the report file name for actual.
func ReportPath(actual string) string { return actual + ReportSuffix }

// WriteTo writes a human readable report.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	fmt.Fprintf(cw, "Expected: %s\n", r.Expected)
	fmt.Fprintf(cw, "Actual:   %s\n", r.Actual)
	fmt.Fprintf(cw, "Tolerance: %g\n", r.Options.Tolerance)
	if r.Intensity.Cells > 0 {
		fmt.Fprintf(cw, "Intensity: %d cells, mean abs diff %.6f, max abs diff %.6f\n",
			r.Intensity.Cells, r.Intensity.MeanAbs, r.Intensity.MaxAbs)
	}
	if r.Match() {
		fmt.Fprintln(cw, "Files match.")
	} else {
		fmt.Fprintf(cw, "%d differences:\n", len(r.Differences))
		for _, d := range r.Differences {
			fmt.Fprintf(cw, "  %s\n", d)
		}
		if r.Stopped {
			fmt.Fprintln(cw, "Stopped at the first difference.")
		}
	}
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

// WriteFile writes the report to path.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := r.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Run compares the CEL file at actualPath against the one at expectedPath
// and writes the report next to actualPath. The report is removed again
// when the files match.
func Run(expectedPath, actualPath string, opts Options) (*Report, error) {
	e, err := cel.Open(expectedPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = e.Close() }()
	a, err := cel.Open(actualPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = a.Close() }()

	r, err := CompareCEL(e, a, opts)
	if err != nil {
		return nil, err
	}
	r.Expected, r.Actual = expectedPath, actualPath

	out := ReportPath(actualPath)
	if err := r.WriteFile(out); err != nil {
		return r, err
	}
	if r.Match() {
		if err := os.Remove(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return r, err
		}
	}
	return r, nil
}
