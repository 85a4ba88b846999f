// Package dat reads and writes Calvin scan acquisition (DAT) files: the
// scanned pixel image of one array and the scan header text.
package dat

import (
	"encoding/binary"
	"fmt"

	"github.com/scigolib/calvin"
)

// FileType identifies Calvin DAT files.
const FileType = "affymetrix-calvin-scan-acquisition"

// Layout names.
const (
	DefaultGroup = "Default Group"
	PixelSet     = "Pixel"
	PixelCol     = "Pixel"
)

// Generic header parameter names.
const (
	HeaderParam    = "affymetrix-dat-header"
	RowsParam      = "affymetrix-pixel-rows"
	ColsParam      = "affymetrix-pixel-cols"
	ScannerIDParam = "affymetrix-scanner-id"
	ArrayTypeParam = "affymetrix-array-type"
)

// Image is a scanned array held in memory. Pixels are stored row by row.
type Image struct {
	FileID string // generated when empty
	Locale string

	Rows, Cols int
	Pixels     []uint16

	HeaderText string
	ScannerID  string
	ArrayType  string

	// Params are additional generic header parameters.
	Params calvin.ParameterList
}

// NewImage returns a zeroed image.
func NewImage(rows, cols int) *Image {
	return &Image{Rows: rows, Cols: cols, Pixels: make([]uint16, rows*cols)}
}

// GenericHeader returns the generic data header describing img, as
// recorded in the parent list of files derived from it.
func (img *Image) GenericHeader() calvin.GenericDataHeader {
	h := calvin.GenericDataHeader{FileTypeID: FileType, FileID: img.FileID, Locale: img.Locale}
	if img.HeaderText != "" {
		h.Params.Add(HeaderParam, calvin.TextValue(img.HeaderText))
	}
	//nolint:gosec // G115: image dimensions fit in i32
	h.Params.Add(RowsParam, calvin.Int32Value(int32(img.Rows)))
	//nolint:gosec // G115: image dimensions fit in i32
	h.Params.Add(ColsParam, calvin.Int32Value(int32(img.Cols)))
	if img.ScannerID != "" {
		h.Params.Add(ScannerIDParam, calvin.TextValue(img.ScannerID))
	}
	if img.ArrayType != "" {
		h.Params.Add(ArrayTypeParam, calvin.TextValue(img.ArrayType))
	}
	for name, v := range img.Params.All() {
		h.Params.Add(name, v)
	}
	return h
}

// Write stores img at path.
func Write(path string, img *Image, opts ...calvin.CreateOption) error {
	if img.Rows < 0 || img.Cols < 0 || len(img.Pixels) != img.Rows*img.Cols {
		return fmt.Errorf("%d pixels for a %dx%d image", len(img.Pixels), img.Rows, img.Cols)
	}
	hdr := calvin.NewFileHeader(FileType)
	hdr.Generic = img.GenericHeader()
	hdr.AddGroup(DefaultGroup).AddDataSet(calvin.DataSetHeader{
		Name:     PixelSet,
		RowCount: len(img.Pixels),
		Columns:  []calvin.ColumnInfo{calvin.UShortColumn(PixelCol)},
	})

	w, err := calvin.Create(path, hdr, opts...)
	if err != nil {
		return err
	}
	ds, err := w.DataSet(DefaultGroup, PixelSet)
	if err != nil {
		_ = w.Close()
		return err
	}
	b := make([]byte, 2*len(img.Pixels))
	for i, p := range img.Pixels {
		binary.BigEndian.PutUint16(b[2*i:], p)
	}
	if err := ds.WriteRows(0, b); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// File is an open Calvin DAT file.
type File struct {
	f          *calvin.File
	ds         *calvin.DataSet
	rows, cols int
}

// Open opens a Calvin DAT file.
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
	params := f.GenericHeader().Params
	rows, err := dimension(params, RowsParam)
	if err != nil {
		return nil, err
	}
	cols, err := dimension(params, ColsParam)
	if err != nil {
		return nil, err
	}
	ds, err := f.DataSet(DefaultGroup, PixelSet)
	if err != nil {
		return nil, err
	}
	if ds.Rows() != rows*cols {
		return nil, fmt.Errorf("%w: %d pixels for a %dx%d image", calvin.ErrFileFormat, ds.Rows(), rows, cols)
	}
	return &File{f: f, ds: ds, rows: rows, cols: cols}, nil
}

func dimension(params calvin.ParameterList, name string) (int, error) {
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

// Close releases the file.
func (f *File) Close() error { return f.f.Close() }

// Rows returns the image height.
func (f *File) Rows() int { return f.rows }

// Cols returns the image width.
func (f *File) Cols() int { return f.cols }

// GenericHeader returns the file's generic data header.
func (f *File) GenericHeader() *calvin.GenericDataHeader { return f.f.GenericHeader() }

// HeaderText returns the GCOS scan header string, or "".
func (f *File) HeaderText() string { return f.f.GenericHeader().Params.FindString(HeaderParam) }

// HeaderFields parses HeaderText.
func (f *File) HeaderFields() (HeaderFields, error) { return ParseHeaderString(f.HeaderText()) }

// Pixel returns the pixel at (x, y).
func (f *File) Pixel(x, y int) (uint16, error) {
	if x < 0 || x >= f.cols || y < 0 || y >= f.rows {
		return 0, fmt.Errorf("%w: pixel (%d,%d) outside %dx%d", calvin.ErrIndexOutOfRange, x, y, f.cols, f.rows)
	}
	return f.ds.ReadUInt16(y*f.cols+x, 0)
}

// Pixels returns the whole image row by row.
func (f *File) Pixels() ([]uint16, error) { return f.ds.ReadUInt16Column(0) }
