package core

import (
	"fmt"

	"github.com/scigolib/calvin/internal/utils"
)

// ColumnType is the on-disk type tag of a data set column.
type ColumnType int8

// Column type tags. Byte..Float share numbering with ParameterType.
const (
	ColumnByte    ColumnType = 0
	ColumnUByte   ColumnType = 1
	ColumnShort   ColumnType = 2
	ColumnUShort  ColumnType = 3
	ColumnInt     ColumnType = 4
	ColumnUInt    ColumnType = 5
	ColumnFloat   ColumnType = 6
	ColumnASCII   ColumnType = 7
	ColumnUnicode ColumnType = 8
)

// String returns the tag name.
func (t ColumnType) String() string {
	switch t {
	case ColumnByte:
		return "byte"
	case ColumnUByte:
		return "ubyte"
	case ColumnShort:
		return "short"
	case ColumnUShort:
		return "ushort"
	case ColumnInt:
		return "int"
	case ColumnUInt:
		return "uint"
	case ColumnFloat:
		return "float"
	case ColumnASCII:
		return "ascii"
	case ColumnUnicode:
		return "unicode"
	default:
		return fmt.Sprintf("column_%d", int8(t))
	}
}

// ValueType returns the ParameterType a cell of this column holds.
func (t ColumnType) ValueType() ParameterType {
	switch t {
	case ColumnASCII:
		return ParamAscii
	case ColumnUnicode:
		return ParamText
	default:
		return ParameterType(t)
	}
}

// ColumnInfo describes one fixed-width column.
type ColumnInfo struct {
	Name   string
	Type   ColumnType
	MaxLen int // characters, for ASCII and Unicode columns only
}

// ByteColumn returns an int8 column.
func ByteColumn(name string) ColumnInfo { return ColumnInfo{Name: name, Type: ColumnByte} }

// UByteColumn returns a uint8 column.
func UByteColumn(name string) ColumnInfo { return ColumnInfo{Name: name, Type: ColumnUByte} }

// ShortColumn returns an int16 column.
func ShortColumn(name string) ColumnInfo { return ColumnInfo{Name: name, Type: ColumnShort} }

// UShortColumn returns a uint16 column.
func UShortColumn(name string) ColumnInfo { return ColumnInfo{Name: name, Type: ColumnUShort} }

// IntColumn returns an int32 column.
func IntColumn(name string) ColumnInfo { return ColumnInfo{Name: name, Type: ColumnInt} }

// UIntColumn returns a uint32 column.
func UIntColumn(name string) ColumnInfo { return ColumnInfo{Name: name, Type: ColumnUInt} }

// FloatColumn returns a float32 column.
func FloatColumn(name string) ColumnInfo { return ColumnInfo{Name: name, Type: ColumnFloat} }

// ASCIIColumn returns a NUL-padded 8-bit text column of maxLen bytes.
func ASCIIColumn(name string, maxLen int) ColumnInfo {
	return ColumnInfo{Name: name, Type: ColumnASCII, MaxLen: maxLen}
}

// UnicodeColumn returns a NUL-padded UTF-16 text column of maxLen code units.
func UnicodeColumn(name string, maxLen int) ColumnInfo {
	return ColumnInfo{Name: name, Type: ColumnUnicode, MaxLen: maxLen}
}

// Width returns the column's byte width within a row.
func (c ColumnInfo) Width() int {
	switch c.Type {
	case ColumnByte, ColumnUByte:
		return 1
	case ColumnShort, ColumnUShort:
		return 2
	case ColumnInt, ColumnUInt, ColumnFloat:
		return 4
	case ColumnASCII:
		return c.MaxLen
	case ColumnUnicode:
		return 2 * c.MaxLen
	default:
		return 0
	}
}

// Validate rejects unknown types and negative text lengths.
func (c ColumnInfo) Validate() error {
	if c.Type < ColumnByte || c.Type > ColumnUnicode {
		return fmt.Errorf("column %q: unknown type %d", c.Name, int8(c.Type))
	}
	if (c.Type == ColumnASCII || c.Type == ColumnUnicode) && c.MaxLen < 0 {
		return fmt.Errorf("column %q: negative length %d", c.Name, c.MaxLen)
	}
	return nil
}

// EncodedSize returns the descriptor size: string16 name, i8 tag, i32 width.
func (c ColumnInfo) EncodedSize() int { return String16Size(c.Name) + 1 + 4 }

// Encode appends the column descriptor.
func (c ColumnInfo) Encode(e *Encoder) {
	e.PutString16(c.Name)
	e.PutInt8(int8(c.Type))
	//nolint:gosec // G115: widths are validated when the schema is built
	e.PutInt32(int32(c.Width()))
}

// DecodeColumnInfo reads one column descriptor.
func DecodeColumnInfo(d *Decoder) (ColumnInfo, error) {
	var c ColumnInfo
	var err error
	if c.Name, err = d.String16(); err != nil {
		return c, err
	}
	at := d.Offset()
	tag, err := d.Int8()
	if err != nil {
		return c, err
	}
	c.Type = ColumnType(tag)
	width, err := d.Int32()
	if err != nil {
		return c, err
	}
	if c.Type < ColumnByte || c.Type > ColumnUnicode {
		return c, utils.FormatError("unexpected column type tag %d at offset %d", tag, at)
	}
	switch c.Type {
	case ColumnASCII:
		c.MaxLen = int(width)
	case ColumnUnicode:
		c.MaxLen = int(width) / 2
	}
	if width < 0 || int(width) != c.Width() {
		return c, utils.FormatError("column %q: width %d does not match type %s", c.Name, width, c.Type)
	}
	return c, nil
}
