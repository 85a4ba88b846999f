// Package cel reads and writes Calvin CEL files: per-cell intensities with
// optional standard deviations and pixel counts, plus outlier and masked
// cell lists, for one scanned array.
//
// Cells are addressed by index y*Cols + x.
package cel

import (
	"fmt"

	"github.com/scigolib/calvin"
)

// FileType identifies Calvin CEL files.
const FileType = "affymetrix-calvin-intensity"

// DATFileType identifies the scan acquisition header a CEL file is derived from.
const DATFileType = "affymetrix-calvin-scan-acquisition"

// Layout names.
const (
	DefaultGroup   = "Default Group"
	IntensitySet   = "Intensity"
	StdDevSet      = "StdDev"
	PixelSet       = "Pixel"
	OutlierSet     = "Outlier"
	MaskSet        = "Mask"
	CoordinateXCol = "X"
	CoordinateYCol = "Y"
)

// Generic header parameter names.
const (
	AlgorithmNameParam    = "affymetrix-algorithm-name"
	AlgorithmVersionParam = "affymetrix-algorithm-version"
	ArrayTypeParam        = "affymetrix-array-type"
	RowsParam             = "affymetrix-cel-rows"
	ColsParam             = "affymetrix-cel-cols"
	AlgorithmParamPrefix  = "affymetrix-algorithm-param-"
	DATHeaderParam        = "affymetrix-dat-header"
	PartialDATHeaderParam = "affymetrix-partial-dat-header"
)

// Coord is a cell position.
type Coord struct {
	X, Y int16
}

// Data is a CEL file held in memory.
type Data struct {
	FileID string // generated when empty
	Locale string

	AlgorithmName    string
	AlgorithmVersion string
	ArrayType        string

	Rows, Cols int

	// AlgParams are written with AlgorithmParamPrefix added.
	AlgParams calvin.ParameterList
	Parents   []calvin.GenericDataHeader

	// Intensities holds Rows*Cols values. StdDevs and Pixels are either
	// empty or of the same length.
	Intensities []float32
	StdDevs     []float32
	Pixels      []int16

	Outliers []Coord
	Masked   []Coord
}

// NewData returns a zeroed array of rows x cols cells.
func NewData(rows, cols int) *Data {
	return &Data{Rows: rows, Cols: cols, Intensities: make([]float32, rows*cols)}
}

// NumCells returns Rows*Cols.
func (d *Data) NumCells() int { return d.Rows * d.Cols }

// AddAlgParam appends an algorithm parameter.
func (d *Data) AddAlgParam(name string, v calvin.ParameterValue) {
	d.AlgParams.Add(name, v)
}

// SetDATHeader records the scan header text as a parent header, replacing
// the text of an existing scan parent.
func (d *Data) SetDATHeader(text string) {
	for i := range d.Parents {
		if d.Parents[i].FileTypeID == DATFileType {
			d.Parents[i].Params.Update(DATHeaderParam, calvin.TextValue(text))
			return
		}
	}
	var p calvin.GenericDataHeader
	p.FileTypeID = DATFileType
	p.Params.Add(DATHeaderParam, calvin.TextValue(text))
	d.Parents = append(d.Parents, p)
}

func (d *Data) validate() error {
	n := d.NumCells()
	switch {
	case d.Rows < 0 || d.Cols < 0:
		return fmt.Errorf("invalid array size %dx%d", d.Rows, d.Cols)
	case len(d.Intensities) != n:
		return fmt.Errorf("%d intensities for %d cells", len(d.Intensities), n)
	case len(d.StdDevs) != 0 && len(d.StdDevs) != n:
		return fmt.Errorf("%d standard deviations for %d cells", len(d.StdDevs), n)
	case len(d.Pixels) != 0 && len(d.Pixels) != n:
		return fmt.Errorf("%d pixel counts for %d cells", len(d.Pixels), n)
	}
	return nil
}

// Header builds the container header for d.
func (d *Data) Header() (*calvin.FileHeader, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	h := calvin.NewFileHeader(FileType)
	h.Generic.FileID = d.FileID
	h.Generic.Locale = d.Locale
	for _, p := range d.Parents {
		h.Generic.AddParent(p)
	}

	params := &h.Generic.Params
	if d.AlgorithmName != "" {
		params.Add(AlgorithmNameParam, calvin.TextValue(d.AlgorithmName))
	}
	if d.AlgorithmVersion != "" {
		params.Add(AlgorithmVersionParam, calvin.TextValue(d.AlgorithmVersion))
	}
	if d.ArrayType != "" {
		params.Add(ArrayTypeParam, calvin.TextValue(d.ArrayType))
	}
	//nolint:gosec // G115: array dimensions fit in i32
	params.Add(RowsParam, calvin.Int32Value(int32(d.Rows)))
	//nolint:gosec // G115: array dimensions fit in i32
	params.Add(ColsParam, calvin.Int32Value(int32(d.Cols)))
	for name, v := range d.AlgParams.All() {
		params.Add(AlgorithmParamPrefix+name, v)
	}

	g := h.AddGroup(DefaultGroup)
	n := d.NumCells()
	g.AddDataSet(calvin.DataSetHeader{
		Name: IntensitySet, RowCount: n,
		Columns: []calvin.ColumnInfo{calvin.FloatColumn(IntensitySet)},
	})
	if len(d.StdDevs) > 0 {
		g.AddDataSet(calvin.DataSetHeader{
			Name: StdDevSet, RowCount: n,
			Columns: []calvin.ColumnInfo{calvin.FloatColumn(StdDevSet)},
		})
	}
	if len(d.Pixels) > 0 {
		g.AddDataSet(calvin.DataSetHeader{
			Name: PixelSet, RowCount: n,
			Columns: []calvin.ColumnInfo{calvin.ShortColumn(PixelSet)},
		})
	}
	g.AddDataSet(coordDataSet(OutlierSet, len(d.Outliers)))
	g.AddDataSet(coordDataSet(MaskSet, len(d.Masked)))
	return h, nil
}

func coordDataSet(name string, n int) calvin.DataSetHeader {
	return calvin.DataSetHeader{
		Name:     name,
		RowCount: n,
		Columns: []calvin.ColumnInfo{
			calvin.ShortColumn(CoordinateXCol),
			calvin.ShortColumn(CoordinateYCol),
		},
	}
}
