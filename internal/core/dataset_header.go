package core

import (
	"fmt"

	"github.com/scigolib/calvin/internal/utils"
)

// DataSetHeader describes a named table: parameters, column schema and row
// count. The offsets are absolute file positions assigned by PlanLayout on
// write or read back from the stream on decode.
type DataSetHeader struct {
	Name     string
	Params   ParameterList
	Columns  []ColumnInfo
	RowCount int

	HeaderOffset uint32 // first byte of this header
	DataOffset   uint32 // first byte of the packed rows
	NextOffset   uint32 // first byte after the packed rows
}

// AddColumn appends a column to the schema.
func (h *DataSetHeader) AddColumn(c ColumnInfo) {
	h.Columns = append(h.Columns, c)
}

// RowWidth returns the sum of the column widths.
func (h *DataSetHeader) RowWidth() int {
	w := 0
	for _, c := range h.Columns {
		w += c.Width()
	}
	return w
}

// ColumnOffset returns the byte offset of column col within a row.
func (h *DataSetHeader) ColumnOffset(col int) int {
	off := 0
	for _, c := range h.Columns[:col] {
		off += c.Width()
	}
	return off
}

// ColumnIndex returns the index of the first column named name, or -1.
func (h *DataSetHeader) ColumnIndex(name string) int {
	for i, c := range h.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// DataSize returns RowCount*RowWidth, or an error when it cannot be addressed.
func (h *DataSetHeader) DataSize() (uint64, error) {
	//nolint:gosec // G115: RowCount is validated non-negative
	return utils.RegionSize(uint64(h.RowCount), uint64(h.RowWidth()))
}

// CellOffset returns the absolute position of cell (row, col).
func (h *DataSetHeader) CellOffset(row, col int) (int64, error) {
	if row < 0 || row >= h.RowCount {
		return 0, utils.RangeError("row", row, h.RowCount)
	}
	if col < 0 || col >= len(h.Columns) {
		return 0, utils.RangeError("column", col, len(h.Columns))
	}
	return int64(h.DataOffset) + int64(row)*int64(h.RowWidth()) + int64(h.ColumnOffset(col)), nil
}

// Validate checks the schema before a layout is planned.
func (h *DataSetHeader) Validate() error {
	if h.RowCount < 0 {
		return fmt.Errorf("data set %q: negative row count %d", h.Name, h.RowCount)
	}
	for _, c := range h.Columns {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("data set %q: %w", h.Name, err)
		}
	}
	if _, err := h.DataSize(); err != nil {
		return fmt.Errorf("data set %q: %w", h.Name, err)
	}
	return nil
}

// EncodedSize returns the size of the header, excluding the packed rows.
func (h *DataSetHeader) EncodedSize() int {
	n := 4 + 4 + String16Size(h.Name) + h.Params.EncodedSize() + 4
	for _, c := range h.Columns {
		n += c.EncodedSize()
	}
	return n + 4
}

// Encode appends the header using the currently assigned offsets.
func (h *DataSetHeader) Encode(e *Encoder) {
	e.PutUint32(h.DataOffset)
	e.PutUint32(h.NextOffset)
	e.PutString16(h.Name)
	h.Params.Encode(e)
	//nolint:gosec // G115: column counts are bounded by MaxListCount
	e.PutUint32(uint32(len(h.Columns)))
	for _, c := range h.Columns {
		c.Encode(e)
	}
	//nolint:gosec // G115: RowCount is validated non-negative
	e.PutUint32(uint32(h.RowCount))
}

// DecodeDataSetHeader reads a data set header at the decoder's position.
func DecodeDataSetHeader(d *Decoder) (DataSetHeader, error) {
	var h DataSetHeader
	//nolint:gosec // G115: positions come from u32 offsets
	h.HeaderOffset = uint32(d.Offset())
	var err error
	if h.DataOffset, err = d.Uint32(); err != nil {
		return h, err
	}
	if h.NextOffset, err = d.Uint32(); err != nil {
		return h, err
	}
	if h.Name, err = d.String16(); err != nil {
		return h, err
	}
	if h.Params, err = DecodeParameterList(d); err != nil {
		return h, err
	}
	n, err := d.Count("column")
	if err != nil {
		return h, err
	}
	h.Columns = make([]ColumnInfo, 0, n)
	for range n {
		c, err := DecodeColumnInfo(d)
		if err != nil {
			return h, err
		}
		h.Columns = append(h.Columns, c)
	}
	rows, err := d.Uint32()
	if err != nil {
		return h, err
	}
	h.RowCount = int(rows)

	size, err := h.DataSize()
	if err != nil {
		return h, utils.FormatError("data set %q: %v", h.Name, err)
	}
	//nolint:gosec // G115: positions come from u32 offsets
	if h.DataOffset != uint32(d.Offset()) {
		return h, utils.FormatError("data set %q: data offset %d does not follow header end %d",
			h.Name, h.DataOffset, d.Offset())
	}
	if uint64(h.NextOffset) != uint64(h.DataOffset)+size {
		return h, utils.FormatError("data set %q: next offset %d inconsistent with %d bytes of rows at %d",
			h.Name, h.NextOffset, size, h.DataOffset)
	}
	return h, nil
}
