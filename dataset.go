package calvin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/scigolib/calvin/internal/core"
	"github.com/scigolib/calvin/internal/utils"
)

// scanChunk bounds the bytes read at once by the column scanners.
const scanChunk = 64 * 1024

// DataSet is a fixed-schema table with random-access cell I/O. Cells are
// located at dataOffset + row*rowWidth + columnOffset.
type DataSet struct {
	hdr   *core.DataSetHeader
	src   io.ReaderAt
	dst   io.WriterAt
	width int
}

func newDataSet(hdr *core.DataSetHeader, src io.ReaderAt, dst io.WriterAt) *DataSet {
	return &DataSet{hdr: hdr, src: src, dst: dst, width: hdr.RowWidth()}
}

// Name returns the data set name.
func (d *DataSet) Name() string { return d.hdr.Name }

// Header returns the data set header. It must not be modified.
func (d *DataSet) Header() *DataSetHeader { return d.hdr }

// Params returns the data set parameters.
func (d *DataSet) Params() ParameterList { return d.hdr.Params }

// Rows returns the row count.
func (d *DataSet) Rows() int { return d.hdr.RowCount }

// RowWidth returns the packed row width in bytes.
func (d *DataSet) RowWidth() int { return d.width }

// DataOffset returns the absolute position of row 0.
func (d *DataSet) DataOffset() int64 { return int64(d.hdr.DataOffset) }

// NumColumns returns the column count.
func (d *DataSet) NumColumns() int { return len(d.hdr.Columns) }

// Columns returns the column schema. It must not be modified.
func (d *DataSet) Columns() []ColumnInfo { return d.hdr.Columns }

// Column returns the descriptor of column col.
func (d *DataSet) Column(col int) (ColumnInfo, error) {
	if col < 0 || col >= len(d.hdr.Columns) {
		return ColumnInfo{}, utils.RangeError("column", col, len(d.hdr.Columns))
	}
	return d.hdr.Columns[col], nil
}

// ColumnName returns the name of column col, or "" when out of range.
func (d *DataSet) ColumnName(col int) string {
	c, err := d.Column(col)
	if err != nil {
		return ""
	}
	return c.Name
}

// ColumnType returns the type of column col, or -1 when out of range.
func (d *DataSet) ColumnType(col int) ColumnType {
	c, err := d.Column(col)
	if err != nil {
		return -1
	}
	return c.Type
}

// ColumnIndex returns the index of the first column named name, or -1.
func (d *DataSet) ColumnIndex(name string) int { return d.hdr.ColumnIndex(name) }

// Writable reports whether WriteCell is permitted.
func (d *DataSet) Writable() bool { return d.dst != nil }

func (d *DataSet) rowOffset(row int) (int64, error) {
	if row < 0 || row >= d.hdr.RowCount {
		return 0, utils.RangeError("row", row, d.hdr.RowCount)
	}
	return int64(d.hdr.DataOffset) + int64(row)*int64(d.width), nil
}

// ReadRowBytes returns the packed bytes of row.
func (d *DataSet) ReadRowBytes(row int) ([]byte, error) {
	off, err := d.rowOffset(row)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, d.width)
	if err := utils.ReadFull(d.src, buf, off); err != nil {
		return nil, fmt.Errorf("data set %q row %d: %w", d.hdr.Name, row, err)
	}
	return buf, nil
}

// ReadRow decodes every cell of row.
func (d *DataSet) ReadRow(row int) ([]ParameterValue, error) {
	b, err := d.ReadRowBytes(row)
	if err != nil {
		return nil, err
	}
	dec := core.NewRowDecoder(d.hdr.Columns)
	if err := dec.SetRow(b); err != nil {
		return nil, err
	}
	return dec.Values()
}

// ReadCell decodes cell (row, col).
func (d *DataSet) ReadCell(row, col int) (ParameterValue, error) {
	off, err := d.hdr.CellOffset(row, col)
	if err != nil {
		return ParameterValue{}, err
	}
	c := d.hdr.Columns[col]
	buf := utils.GetBuffer(c.Width())
	defer utils.ReleaseBuffer(buf)
	if err := utils.ReadFull(d.src, buf, off); err != nil {
		return ParameterValue{}, fmt.Errorf("data set %q cell (%d,%d): %w", d.hdr.Name, row, col, err)
	}
	return core.DecodeCell(c, buf)
}

// WriteCell encodes v into cell (row, col). The value kind must match the
// column type; text longer than the column is rejected.
func (d *DataSet) WriteCell(row, col int, v ParameterValue) error {
	if d.dst == nil {
		return fmt.Errorf("%w: %q", ErrReadOnly, d.hdr.Name)
	}
	off, err := d.hdr.CellOffset(row, col)
	if err != nil {
		return err
	}
	b, err := core.EncodeCell(d.hdr.Columns[col], v)
	if err != nil {
		return err
	}
	_, err = d.dst.WriteAt(b, off)
	return err
}

// WriteRows writes whole packed rows starting at row start. len(data) must
// be a multiple of the row width and the rows must fit the table.
func (d *DataSet) WriteRows(start int, data []byte) error {
	if d.dst == nil {
		return fmt.Errorf("%w: %q", ErrReadOnly, d.hdr.Name)
	}
	if d.width == 0 || len(data)%d.width != 0 {
		return fmt.Errorf("data set %q: %d bytes is not a whole number of %d-byte rows",
			d.hdr.Name, len(data), d.width)
	}
	n := len(data) / d.width
	if start < 0 || start+n > d.hdr.RowCount {
		return utils.RangeError("row", start+n-1, d.hdr.RowCount)
	}
	if n == 0 {
		return nil
	}
	off, _ := d.rowOffset(start)
	_, err := d.dst.WriteAt(data, off)
	return err
}

// ReadInt8 reads a byte cell.
func (d *DataSet) ReadInt8(row, col int) (int8, error) {
	v, err := d.ReadCell(row, col)
	if err != nil {
		return 0, err
	}
	return v.Int8()
}

// ReadUInt8 reads an unsigned byte cell.
func (d *DataSet) ReadUInt8(row, col int) (uint8, error) {
	v, err := d.ReadCell(row, col)
	if err != nil {
		return 0, err
	}
	return v.UInt8()
}

// ReadInt16 reads a short cell.
func (d *DataSet) ReadInt16(row, col int) (int16, error) {
	v, err := d.ReadCell(row, col)
	if err != nil {
		return 0, err
	}
	return v.Int16()
}

// ReadUInt16 reads an unsigned short cell.
func (d *DataSet) ReadUInt16(row, col int) (uint16, error) {
	v, err := d.ReadCell(row, col)
	if err != nil {
		return 0, err
	}
	return v.UInt16()
}

// ReadInt32 reads an int cell.
func (d *DataSet) ReadInt32(row, col int) (int32, error) {
	v, err := d.ReadCell(row, col)
	if err != nil {
		return 0, err
	}
	return v.Int32()
}

// ReadUInt32 reads an unsigned int cell.
func (d *DataSet) ReadUInt32(row, col int) (uint32, error) {
	v, err := d.ReadCell(row, col)
	if err != nil {
		return 0, err
	}
	return v.UInt32()
}

// ReadFloat reads a float cell.
func (d *DataSet) ReadFloat(row, col int) (float32, error) {
	v, err := d.ReadCell(row, col)
	if err != nil {
		return 0, err
	}
	return v.Float()
}

// ReadString reads an ASCII or Unicode cell, without padding.
func (d *DataSet) ReadString(row, col int) (string, error) {
	v, err := d.ReadCell(row, col)
	if err != nil {
		return "", err
	}
	if v.Type() == ParamText {
		return v.Text()
	}
	return v.Ascii()
}

// scanColumn calls fn with the cell bytes of col for every row, reading
// whole rows in chunks.
func (d *DataSet) scanColumn(col int, want ColumnType, fn func(row int, cell []byte)) error {
	c, err := d.Column(col)
	if err != nil {
		return err
	}
	if c.Type != want {
		return fmt.Errorf("%w: column %q is %s, requested %s", ErrTypeMismatch, c.Name, c.Type, want)
	}
	if d.hdr.RowCount == 0 {
		return nil
	}
	cellOff := d.hdr.ColumnOffset(col)
	perChunk := max(1, scanChunk/d.width)
	buf := utils.GetBuffer(perChunk * d.width)
	defer utils.ReleaseBuffer(buf)
	for start := 0; start < d.hdr.RowCount; start += perChunk {
		n := min(perChunk, d.hdr.RowCount-start)
		chunk := buf[:n*d.width]
		off, _ := d.rowOffset(start)
		if err := utils.ReadFull(d.src, chunk, off); err != nil {
			return fmt.Errorf("data set %q rows %d..%d: %w", d.hdr.Name, start, start+n-1, err)
		}
		for i := range n {
			base := i*d.width + cellOff
			fn(start+i, chunk[base:base+c.Width()])
		}
	}
	return nil
}

// ReadFloatColumn reads every value of a float column.
func (d *DataSet) ReadFloatColumn(col int) ([]float32, error) {
	out := make([]float32, d.hdr.RowCount)
	err := d.scanColumn(col, ColumnFloat, func(row int, cell []byte) {
		out[row] = math.Float32frombits(binary.BigEndian.Uint32(cell))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadInt16Column reads every value of a short column.
func (d *DataSet) ReadInt16Column(col int) ([]int16, error) {
	out := make([]int16, d.hdr.RowCount)
	err := d.scanColumn(col, ColumnShort, func(row int, cell []byte) {
		//nolint:gosec // G115: reinterpreting the stored two's complement
		out[row] = int16(binary.BigEndian.Uint16(cell))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadUInt16Column reads every value of an unsigned short column.
func (d *DataSet) ReadUInt16Column(col int) ([]uint16, error) {
	out := make([]uint16, d.hdr.RowCount)
	err := d.scanColumn(col, ColumnUShort, func(row int, cell []byte) {
		out[row] = binary.BigEndian.Uint16(cell)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
