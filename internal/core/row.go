package core

import (
	"fmt"
	"math"

	"github.com/scigolib/calvin/internal/utils"
)

// RowEncoder packs one row of a fixed schema. Cells not set since the last
// Reset are zero.
type RowEncoder struct {
	cols    []ColumnInfo
	offsets []int
	buf     []byte
}

// NewRowEncoder returns an encoder for the given schema.
func NewRowEncoder(cols []ColumnInfo) *RowEncoder {
	offsets := make([]int, len(cols))
	w := 0
	for i, c := range cols {
		offsets[i] = w
		w += c.Width()
	}
	return &RowEncoder{cols: cols, offsets: offsets, buf: make([]byte, w)}
}

// Columns returns the schema.
func (r *RowEncoder) Columns() []ColumnInfo { return r.cols }

// Width returns the row width in bytes.
func (r *RowEncoder) Width() int { return len(r.buf) }

// Reset zeroes the row.
func (r *RowEncoder) Reset() { clear(r.buf) }

// Bytes returns the packed row. The slice is reused by later calls.
func (r *RowEncoder) Bytes() []byte { return r.buf }

func (r *RowEncoder) cell(col int, want ColumnType) ([]byte, error) {
	if col < 0 || col >= len(r.cols) {
		return nil, utils.RangeError("column", col, len(r.cols))
	}
	c := r.cols[col]
	if c.Type != want {
		return nil, fmt.Errorf("%w: column %q is %s, got %s", utils.ErrTypeMismatch, c.Name, c.Type, want)
	}
	return r.buf[r.offsets[col] : r.offsets[col]+c.Width()], nil
}

// PutInt8 sets a byte cell.
func (r *RowEncoder) PutInt8(col int, v int8) error {
	b, err := r.cell(col, ColumnByte)
	if err == nil {
		b[0] = byte(v)
	}
	return err
}

// PutUInt8 sets a ubyte cell.
func (r *RowEncoder) PutUInt8(col int, v uint8) error {
	b, err := r.cell(col, ColumnUByte)
	if err == nil {
		b[0] = v
	}
	return err
}

// PutInt16 sets a short cell.
func (r *RowEncoder) PutInt16(col int, v int16) error {
	b, err := r.cell(col, ColumnShort)
	if err == nil {
		byteOrder.PutUint16(b, uint16(v))
	}
	return err
}

// PutUInt16 sets a ushort cell.
func (r *RowEncoder) PutUInt16(col int, v uint16) error {
	b, err := r.cell(col, ColumnUShort)
	if err == nil {
		byteOrder.PutUint16(b, v)
	}
	return err
}

// PutInt32 sets an int cell.
func (r *RowEncoder) PutInt32(col int, v int32) error {
	b, err := r.cell(col, ColumnInt)
	if err == nil {
		byteOrder.PutUint32(b, uint32(v))
	}
	return err
}

// PutUInt32 sets a uint cell.
func (r *RowEncoder) PutUInt32(col int, v uint32) error {
	b, err := r.cell(col, ColumnUInt)
	if err == nil {
		byteOrder.PutUint32(b, v)
	}
	return err
}

// PutFloat sets a float cell.
func (r *RowEncoder) PutFloat(col int, v float32) error {
	b, err := r.cell(col, ColumnFloat)
	if err == nil {
		byteOrder.PutUint32(b, math.Float32bits(v))
	}
	return err
}

// PutASCII sets an ASCII cell; values longer than the column are rejected.
func (r *RowEncoder) PutASCII(col int, s string) error {
	b, err := r.cell(col, ColumnASCII)
	if err != nil {
		return err
	}
	if len(s) > len(b) {
		return fmt.Errorf("%w: %q longer than %d bytes of column %q",
			utils.ErrIndexOutOfRange, s, len(b), r.cols[col].Name)
	}
	clear(b[copy(b, s):])
	return nil
}

// PutText sets a Unicode cell; values longer than the column are rejected.
func (r *RowEncoder) PutText(col int, s string) error {
	b, err := r.cell(col, ColumnUnicode)
	if err != nil {
		return err
	}
	enc := encodeUTF16(s)
	if len(enc) > len(b) {
		return fmt.Errorf("%w: %q longer than %d units of column %q",
			utils.ErrIndexOutOfRange, s, len(b)/2, r.cols[col].Name)
	}
	clear(b[copy(b, enc):])
	return nil
}

// Put sets a cell from a ParameterValue whose kind matches the column.
func (r *RowEncoder) Put(col int, v ParameterValue) error {
	if col < 0 || col >= len(r.cols) {
		return utils.RangeError("column", col, len(r.cols))
	}
	c := r.cols[col]
	if c.Type.ValueType() != v.typ {
		return fmt.Errorf("%w: column %q is %s, value is %s", utils.ErrTypeMismatch, c.Name, c.Type, v.typ)
	}
	switch c.Type {
	case ColumnByte:
		//nolint:gosec // G115: payload was stored from an int8
		return r.PutInt8(col, int8(v.bits))
	case ColumnUByte:
		//nolint:gosec // G115: payload was stored from a uint8
		return r.PutUInt8(col, uint8(v.bits))
	case ColumnShort:
		//nolint:gosec // G115: payload was stored from an int16
		return r.PutInt16(col, int16(v.bits))
	case ColumnUShort:
		//nolint:gosec // G115: payload was stored from a uint16
		return r.PutUInt16(col, uint16(v.bits))
	case ColumnInt:
		//nolint:gosec // G115: payload was stored from an int32
		return r.PutInt32(col, int32(v.bits))
	case ColumnUInt:
		return r.PutUInt32(col, v.bits)
	case ColumnFloat:
		return r.PutFloat(col, math.Float32frombits(v.bits))
	case ColumnASCII:
		return r.PutASCII(col, v.text)
	default:
		return r.PutText(col, v.text)
	}
}

// EncodeCell returns the fixed-width encoding of v for column c.
func EncodeCell(c ColumnInfo, v ParameterValue) ([]byte, error) {
	r := NewRowEncoder([]ColumnInfo{c})
	if err := r.Put(0, v); err != nil {
		return nil, err
	}
	return r.Bytes(), nil
}

// DecodeCell decodes one fixed-width cell of column c.
func DecodeCell(c ColumnInfo, b []byte) (ParameterValue, error) {
	var v ParameterValue
	if len(b) != c.Width() {
		return v, utils.FormatError("cell of column %q has %d bytes, expected %d", c.Name, len(b), c.Width())
	}
	switch c.Type {
	case ColumnByte:
		v.SetInt8(int8(b[0]))
	case ColumnUByte:
		v.SetUInt8(b[0])
	case ColumnShort:
		v.SetInt16(int16(byteOrder.Uint16(b)))
	case ColumnUShort:
		v.SetUInt16(byteOrder.Uint16(b))
	case ColumnInt:
		v.SetInt32(int32(byteOrder.Uint32(b)))
	case ColumnUInt:
		v.SetUInt32(byteOrder.Uint32(b))
	case ColumnFloat:
		v.SetFloat(math.Float32frombits(byteOrder.Uint32(b)))
	case ColumnASCII:
		v.SetAscii(trimNUL(b), c.MaxLen)
	case ColumnUnicode:
		s, err := decodeUTF16(b)
		if err != nil {
			return v, err
		}
		v.SetText(s, c.MaxLen)
	default:
		return v, utils.FormatError("unexpected column type %d", int8(c.Type))
	}
	return v, nil
}

// RowDecoder reads cells out of a packed row.
type RowDecoder struct {
	cols    []ColumnInfo
	offsets []int
	width   int
	row     []byte
}

// NewRowDecoder returns a decoder for the given schema.
func NewRowDecoder(cols []ColumnInfo) *RowDecoder {
	offsets := make([]int, len(cols))
	w := 0
	for i, c := range cols {
		offsets[i] = w
		w += c.Width()
	}
	return &RowDecoder{cols: cols, offsets: offsets, width: w}
}

// Width returns the row width in bytes.
func (r *RowDecoder) Width() int { return r.width }

// SetRow points the decoder at a packed row of Width bytes.
func (r *RowDecoder) SetRow(row []byte) error {
	if len(row) != r.width {
		return utils.FormatError("row has %d bytes, expected %d", len(row), r.width)
	}
	r.row = row
	return nil
}

// Value decodes column col of the current row.
func (r *RowDecoder) Value(col int) (ParameterValue, error) {
	if col < 0 || col >= len(r.cols) {
		return ParameterValue{}, utils.RangeError("column", col, len(r.cols))
	}
	c := r.cols[col]
	return DecodeCell(c, r.row[r.offsets[col]:r.offsets[col]+c.Width()])
}

// Values decodes every column of the current row.
func (r *RowDecoder) Values() ([]ParameterValue, error) {
	out := make([]ParameterValue, len(r.cols))
	for i := range r.cols {
		v, err := r.Value(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *RowDecoder) cell(col int, want ColumnType) ([]byte, error) {
	if col < 0 || col >= len(r.cols) {
		return nil, utils.RangeError("column", col, len(r.cols))
	}
	c := r.cols[col]
	if c.Type != want {
		return nil, fmt.Errorf("%w: column %q is %s, requested %s", utils.ErrTypeMismatch, c.Name, c.Type, want)
	}
	return r.row[r.offsets[col] : r.offsets[col]+c.Width()], nil
}

// Int8 reads a byte cell.
func (r *RowDecoder) Int8(col int) (int8, error) {
	b, err := r.cell(col, ColumnByte)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// UInt8 reads a ubyte cell.
func (r *RowDecoder) UInt8(col int) (uint8, error) {
	b, err := r.cell(col, ColumnUByte)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int16 reads a short cell.
func (r *RowDecoder) Int16(col int) (int16, error) {
	b, err := r.cell(col, ColumnShort)
	if err != nil {
		return 0, err
	}
	return int16(byteOrder.Uint16(b)), nil
}

// UInt16 reads a ushort cell.
func (r *RowDecoder) UInt16(col int) (uint16, error) {
	b, err := r.cell(col, ColumnUShort)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint16(b), nil
}

// Int32 reads an int cell.
func (r *RowDecoder) Int32(col int) (int32, error) {
	b, err := r.cell(col, ColumnInt)
	if err != nil {
		return 0, err
	}
	return int32(byteOrder.Uint32(b)), nil
}

// UInt32 reads a uint cell.
func (r *RowDecoder) UInt32(col int) (uint32, error) {
	b, err := r.cell(col, ColumnUInt)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(b), nil
}

// Float reads a float cell.
func (r *RowDecoder) Float(col int) (float32, error) {
	b, err := r.cell(col, ColumnFloat)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(byteOrder.Uint32(b)), nil
}

// String reads an ASCII or Unicode cell.
func (r *RowDecoder) String(col int) (string, error) {
	if col < 0 || col >= len(r.cols) {
		return "", utils.RangeError("column", col, len(r.cols))
	}
	if r.cols[col].Type == ColumnUnicode {
		b, err := r.cell(col, ColumnUnicode)
		if err != nil {
			return "", err
		}
		return decodeUTF16(b)
	}
	b, err := r.cell(col, ColumnASCII)
	if err != nil {
		return "", err
	}
	return trimNUL(b), nil
}
