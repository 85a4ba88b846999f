package cel

import (
	"errors"
	"fmt"

	"github.com/scigolib/calvin"
)

// File is an open Calvin CEL file. Intensity, standard deviation and pixel
// columns are read in full on first use; outlier and mask lists on Open.
//
// Thread-safety: Not thread-safe. Caller must synchronize access.
type File struct {
	f          *calvin.File
	rows, cols int

	intensity *calvin.DataSet
	stdDev    *calvin.DataSet
	pixels    *calvin.DataSet

	intensities []float32
	stdDevs     []float32
	pixelCounts []int16

	outliers coordSet
	masked   coordSet
}

// Open opens a Calvin CEL file; gzip-compressed files are accepted.
func Open(path string) (*File, error) {
	f, err := calvin.Open(path)
	if err != nil {
		return nil, err
	}
	out, err := newFile(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func newFile(f *calvin.File) (*File, error) {
	if id := f.FileTypeID(); id != FileType {
		return nil, fmt.Errorf("%w: file type %q, expected %q", calvin.ErrFileFormat, id, FileType)
	}
	out := &File{f: f}
	params := f.GenericHeader().Params
	rows, err := intParam(params, RowsParam)
	if err != nil {
		return nil, err
	}
	cols, err := intParam(params, ColsParam)
	if err != nil {
		return nil, err
	}
	out.rows, out.cols = rows, cols

	g, err := f.DataGroup(DefaultGroup)
	if err != nil {
		return nil, err
	}
	if out.intensity, err = g.DataSet(IntensitySet); err != nil {
		return nil, err
	}
	if n := out.intensity.Rows(); n != rows*cols {
		return nil, fmt.Errorf("%w: %d intensities for a %dx%d array", calvin.ErrFileFormat, n, rows, cols)
	}
	// Optional sets.
	out.stdDev, _ = g.DataSet(StdDevSet)
	out.pixels, _ = g.DataSet(PixelSet)

	if out.outliers, err = readCoords(g, OutlierSet); err != nil {
		return nil, err
	}
	if out.masked, err = readCoords(g, MaskSet); err != nil {
		return nil, err
	}
	return out, nil
}

func intParam(params calvin.ParameterList, name string) (int, error) {
	v, ok := params.Find(name)
	if !ok {
		return 0, fmt.Errorf("%w: missing parameter %s", calvin.ErrFileFormat, name)
	}
	n, err := v.Int32()
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	return int(n), nil
}

func readCoords(g *calvin.DataGroup, name string) (coordSet, error) {
	ds, err := g.DataSet(name)
	if errors.Is(err, calvin.ErrKindNotFound) {
		return coordSet{}, nil
	}
	if err != nil {
		return nil, err
	}
	xs, err := ds.ReadInt16Column(0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	ys, err := ds.ReadInt16Column(1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	s := make(coordSet, len(xs))
	for i := range xs {
		s[Coord{X: xs[i], Y: ys[i]}] = struct{}{}
	}
	return s, nil
}

// Close releases the file.
func (f *File) Close() error { return f.f.Close() }

// Path returns the file name.
func (f *File) Path() string { return f.f.Path() }

// Container returns the underlying generic file.
func (f *File) Container() *calvin.File { return f.f }

// GenericHeader returns the file's generic data header.
func (f *File) GenericHeader() *calvin.GenericDataHeader { return f.f.GenericHeader() }

// Rows returns the number of rows of the array.
func (f *File) Rows() int { return f.rows }

// Cols returns the number of columns of the array.
func (f *File) Cols() int { return f.cols }

// NumCells returns Rows*Cols.
func (f *File) NumCells() int { return f.rows * f.cols }

// CellIndex returns the index of cell (x, y).
func (f *File) CellIndex(x, y int) int { return y*f.cols + x }

// Intensities returns every intensity.
func (f *File) Intensities() ([]float32, error) {
	if f.intensities == nil {
		v, err := f.intensity.ReadFloatColumn(0)
		if err != nil {
			return nil, err
		}
		f.intensities = v
	}
	return f.intensities, nil
}

// Intensity returns the intensity of a cell.
func (f *File) Intensity(cell int) (float32, error) {
	v, err := f.Intensities()
	if err != nil {
		return 0, err
	}
	if cell < 0 || cell >= len(v) {
		return 0, cellError(cell, len(v))
	}
	return v[cell], nil
}

// HasStdDev reports whether the file stores standard deviations.
func (f *File) HasStdDev() bool { return f.stdDev != nil }

// StdDev returns the standard deviation of a cell, 0 when none are stored.
func (f *File) StdDev(cell int) (float32, error) {
	if cell < 0 || cell >= f.NumCells() {
		return 0, cellError(cell, f.NumCells())
	}
	if f.stdDev == nil {
		return 0, nil
	}
	if f.stdDevs == nil {
		v, err := f.stdDev.ReadFloatColumn(0)
		if err != nil {
			return 0, err
		}
		f.stdDevs = v
	}
	if cell >= len(f.stdDevs) {
		return 0, cellError(cell, len(f.stdDevs))
	}
	return f.stdDevs[cell], nil
}

// HasPixels reports whether the file stores pixel counts.
func (f *File) HasPixels() bool { return f.pixels != nil }

// Pixels returns the pixel count of a cell, 0 when none are stored.
func (f *File) Pixels(cell int) (int16, error) {
	if cell < 0 || cell >= f.NumCells() {
		return 0, cellError(cell, f.NumCells())
	}
	if f.pixels == nil {
		return 0, nil
	}
	if f.pixelCounts == nil {
		v, err := f.pixels.ReadInt16Column(0)
		if err != nil {
			return 0, err
		}
		f.pixelCounts = v
	}
	if cell >= len(f.pixelCounts) {
		return 0, cellError(cell, len(f.pixelCounts))
	}
	return f.pixelCounts[cell], nil
}

// IsOutlier reports whether cell (x, y) is an outlier.
func (f *File) IsOutlier(x, y int) bool { return f.outliers.has(x, y) }

// IsMasked reports whether cell (x, y) is masked.
func (f *File) IsMasked(x, y int) bool { return f.masked.has(x, y) }

// NumOutliers returns the number of outlier cells.
func (f *File) NumOutliers() int { return len(f.outliers) }

// NumMasked returns the number of masked cells.
func (f *File) NumMasked() int { return len(f.masked) }

func (f *File) param(name string) string {
	return f.f.GenericHeader().Params.FindString(name)
}

// AlgorithmName returns the name of the feature extraction algorithm.
func (f *File) AlgorithmName() string { return f.param(AlgorithmNameParam) }

// AlgorithmVersion returns the algorithm version.
func (f *File) AlgorithmVersion() string { return f.param(AlgorithmVersionParam) }

// ArrayType returns the array type.
func (f *File) ArrayType() string { return f.param(ArrayTypeParam) }

// AlgorithmParameters returns the algorithm parameters without their prefix.
func (f *File) AlgorithmParameters() calvin.ParameterList {
	return f.f.GenericHeader().Params.WithPrefix(AlgorithmParamPrefix)
}

// AlgorithmParameter returns the display string of an algorithm parameter
// under either spelling, or "" when it is absent.
func (f *File) AlgorithmParameter(name string) string {
	return findAliased(f.AlgorithmParameters(), name)
}

// DATHeader returns the scan header text of the nearest scan acquisition
// ancestor, or "".
func (f *File) DATHeader() string { return datHeaderOf(f.f.GenericHeader()) }

// DATParent returns the nearest scan acquisition ancestor header.
func (f *File) DATParent() (*calvin.GenericDataHeader, bool) {
	return f.f.GenericHeader().FindParent(DATFileType)
}

// Data loads the whole file into memory.
func (f *File) Data() (*Data, error) {
	gh := f.f.GenericHeader()
	d := &Data{
		FileID:           gh.FileID,
		Locale:           gh.Locale,
		AlgorithmName:    f.AlgorithmName(),
		AlgorithmVersion: f.AlgorithmVersion(),
		ArrayType:        f.ArrayType(),
		Rows:             f.rows,
		Cols:             f.cols,
		AlgParams:        f.AlgorithmParameters(),
	}
	for _, p := range gh.Parents {
		d.Parents = append(d.Parents, p.Clone())
	}
	var err error
	if d.Intensities, err = f.Intensities(); err != nil {
		return nil, err
	}
	d.Intensities = append([]float32(nil), d.Intensities...)
	if f.stdDev != nil {
		if d.StdDevs, err = f.stdDev.ReadFloatColumn(0); err != nil {
			return nil, err
		}
	}
	if f.pixels != nil {
		if d.Pixels, err = f.pixels.ReadInt16Column(0); err != nil {
			return nil, err
		}
	}
	d.Outliers = sortedCoords(f.outliers)
	d.Masked = sortedCoords(f.masked)
	return d, nil
}
