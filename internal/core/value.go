package core

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"

	"github.com/scigolib/calvin/internal/utils"
)

// ParameterType is the type tag of a ParameterValue. The numbering is the
// on-disk tag written before every encoded value.
type ParameterType uint8

// Parameter type tags.
const (
	ParamInt8   ParameterType = 0
	ParamUInt8  ParameterType = 1
	ParamInt16  ParameterType = 2
	ParamUInt16 ParameterType = 3
	ParamInt32  ParameterType = 4
	ParamUInt32 ParameterType = 5
	ParamFloat  ParameterType = 6
	ParamAscii  ParameterType = 7
	ParamText   ParameterType = 8
	ParamRaw    ParameterType = 9
)

// String returns the tag name.
func (t ParameterType) String() string {
	switch t {
	case ParamInt8:
		return "int8"
	case ParamUInt8:
		return "uint8"
	case ParamInt16:
		return "int16"
	case ParamUInt16:
		return "uint16"
	case ParamInt32:
		return "int32"
	case ParamUInt32:
		return "uint32"
	case ParamFloat:
		return "float"
	case ParamAscii:
		return "ascii"
	case ParamText:
		return "text"
	case ParamRaw:
		return "raw"
	default:
		return fmt.Sprintf("type_%d", uint8(t))
	}
}

// Valid reports whether t is a known tag.
func (t ParameterType) Valid() bool { return t <= ParamRaw }

// IsText reports whether t is one of the two string kinds.
func (t ParameterType) IsText() bool { return t == ParamAscii || t == ParamText }

// ParameterValue is a typed datum: one of the integer kinds, a float, an
// 8-bit or 16-bit string with a reserved length, or an opaque byte string.
//
// The zero value is an Int8 zero. The kind changes only through a setter.
type ParameterValue struct {
	typ      ParameterType
	bits     uint32 // numeric payload, sign-extended for signed kinds
	text     string
	reserved int // Ascii: bytes, Text: UTF-16 units
	raw      []byte
}

// Type returns the value's kind.
func (v ParameterValue) Type() ParameterType { return v.typ }

// Int8Value returns an Int8 value.
func Int8Value(x int8) ParameterValue {
	var v ParameterValue
	v.SetInt8(x)
	return v
}

// UInt8Value returns a UInt8 value.
func UInt8Value(x uint8) ParameterValue {
	var v ParameterValue
	v.SetUInt8(x)
	return v
}

// Int16Value returns an Int16 value.
func Int16Value(x int16) ParameterValue {
	var v ParameterValue
	v.SetInt16(x)
	return v
}

// UInt16Value returns a UInt16 value.
func UInt16Value(x uint16) ParameterValue {
	var v ParameterValue
	v.SetUInt16(x)
	return v
}

// Int32Value returns an Int32 value.
func Int32Value(x int32) ParameterValue {
	var v ParameterValue
	v.SetInt32(x)
	return v
}

// UInt32Value returns a UInt32 value.
func UInt32Value(x uint32) ParameterValue {
	var v ParameterValue
	v.SetUInt32(x)
	return v
}

// FloatValue returns a Float value.
func FloatValue(x float32) ParameterValue {
	var v ParameterValue
	v.SetFloat(x)
	return v
}

// AsciiValue returns an Ascii value whose reserved length equals len(s).
func AsciiValue(s string) ParameterValue {
	var v ParameterValue
	v.SetAscii(s, 0)
	return v
}

// TextValue returns a Text value whose reserved length equals its UTF-16 length.
func TextValue(s string) ParameterValue {
	var v ParameterValue
	v.SetText(s, 0)
	return v
}

// RawValue returns an opaque byte-string value. The slice is copied.
func RawValue(b []byte) ParameterValue {
	var v ParameterValue
	v.SetRaw(b)
	return v
}

func (v *ParameterValue) setNumeric(t ParameterType, bits uint32) {
	*v = ParameterValue{typ: t, bits: bits}
}

// SetInt8 stores an Int8.
func (v *ParameterValue) SetInt8(x int8) { v.setNumeric(ParamInt8, uint32(int32(x))) }

// SetUInt8 stores a UInt8.
func (v *ParameterValue) SetUInt8(x uint8) { v.setNumeric(ParamUInt8, uint32(x)) }

// SetInt16 stores an Int16.
func (v *ParameterValue) SetInt16(x int16) { v.setNumeric(ParamInt16, uint32(int32(x))) }

// SetUInt16 stores a UInt16.
func (v *ParameterValue) SetUInt16(x uint16) { v.setNumeric(ParamUInt16, uint32(x)) }

// SetInt32 stores an Int32.
func (v *ParameterValue) SetInt32(x int32) { v.setNumeric(ParamInt32, uint32(x)) }

// SetUInt32 stores a UInt32.
func (v *ParameterValue) SetUInt32(x uint32) { v.setNumeric(ParamUInt32, x) }

// SetFloat stores a Float.
func (v *ParameterValue) SetFloat(x float32) { v.setNumeric(ParamFloat, math.Float32bits(x)) }

// SetAscii stores an 8-bit string. The reserved length in bytes becomes the
// largest of reserved, len(s), and the previous reservation when v was
// already Ascii, so an in-place rewrite never changes the encoded size.
func (v *ParameterValue) SetAscii(s string, reserved int) {
	v.setString(ParamAscii, s, len(s), reserved)
}

// SetText stores a wide string. Lengths are counted in UTF-16 code units and
// follow the same reservation rule as SetAscii.
func (v *ParameterValue) SetText(s string, reserved int) {
	v.setString(ParamText, s, utf16Units(s), reserved)
}

func (v *ParameterValue) setString(t ParameterType, s string, live, reserved int) {
	res := max(reserved, live)
	if v.typ == t {
		res = max(res, v.reserved)
	}
	*v = ParameterValue{typ: t, text: s, reserved: res}
}

// SetRaw stores an opaque byte string. The slice is copied.
func (v *ParameterValue) SetRaw(b []byte) {
	*v = ParameterValue{typ: ParamRaw, raw: append([]byte(nil), b...)}
}

func (v ParameterValue) check(want ParameterType) error {
	if v.typ != want {
		return fmt.Errorf("%w: value is %s, requested %s", utils.ErrTypeMismatch, v.typ, want)
	}
	return nil
}

// Int8 returns the value if it is an Int8.
func (v ParameterValue) Int8() (int8, error) {
	//nolint:gosec // G115: payload was stored from an int8
	return int8(v.bits), v.check(ParamInt8)
}

// UInt8 returns the value if it is a UInt8.
func (v ParameterValue) UInt8() (uint8, error) {
	//nolint:gosec // G115: payload was stored from a uint8
	return uint8(v.bits), v.check(ParamUInt8)
}

// Int16 returns the value if it is an Int16.
func (v ParameterValue) Int16() (int16, error) {
	//nolint:gosec // G115: payload was stored from an int16
	return int16(v.bits), v.check(ParamInt16)
}

// UInt16 returns the value if it is a UInt16.
func (v ParameterValue) UInt16() (uint16, error) {
	//nolint:gosec // G115: payload was stored from a uint16
	return uint16(v.bits), v.check(ParamUInt16)
}

// Int32 returns the value if it is an Int32.
func (v ParameterValue) Int32() (int32, error) {
	//nolint:gosec // G115: payload was stored from an int32
	return int32(v.bits), v.check(ParamInt32)
}

// UInt32 returns the value if it is a UInt32.
func (v ParameterValue) UInt32() (uint32, error) {
	return v.bits, v.check(ParamUInt32)
}

// Float returns the value if it is a Float.
func (v ParameterValue) Float() (float32, error) {
	return math.Float32frombits(v.bits), v.check(ParamFloat)
}

// Ascii returns the live string if the value is Ascii.
func (v ParameterValue) Ascii() (string, error) {
	return v.text, v.check(ParamAscii)
}

// Text returns the live string if the value is Text.
func (v ParameterValue) Text() (string, error) {
	return v.text, v.check(ParamText)
}

// Raw returns a copy of the bytes if the value is Raw.
func (v ParameterValue) Raw() ([]byte, error) {
	if err := v.check(ParamRaw); err != nil {
		return nil, err
	}
	return append([]byte(nil), v.raw...), nil
}

// ReservedLength returns the reserved length of a string value (bytes for
// Ascii, UTF-16 units for Text). It is zero for other kinds.
func (v ParameterValue) ReservedLength() int { return v.reserved }

// String renders the value for display regardless of kind. Integers are
// decimal, floats carry six decimals, strings are returned as-is and raw
// bytes as lowercase hex.
func (v ParameterValue) String() string {
	switch v.typ {
	case ParamInt8, ParamInt16, ParamInt32:
		return strconv.FormatInt(int64(int32(v.bits)), 10)
	case ParamUInt8, ParamUInt16, ParamUInt32:
		return strconv.FormatUint(uint64(v.bits), 10)
	case ParamFloat:
		return strconv.FormatFloat(float64(math.Float32frombits(v.bits)), 'f', 6, 32)
	case ParamAscii, ParamText:
		return v.text
	case ParamRaw:
		return hex.EncodeToString(v.raw)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind, payload and reserved length.
func (v ParameterValue) Equal(o ParameterValue) bool {
	if v.typ != o.typ || v.bits != o.bits || v.text != o.text || v.reserved != o.reserved {
		return false
	}
	return string(v.raw) == string(o.raw)
}

// ParseValue converts a display string back into a value of kind t.
// It is the inverse of String for integer, text and raw kinds. Floats are
// displayed with six decimals, so only values representable that way
// survive the round trip.
func ParseValue(t ParameterType, s string) (ParameterValue, error) {
	var v ParameterValue
	switch t {
	case ParamInt8, ParamInt16, ParamInt32:
		bits := map[ParameterType]int{ParamInt8: 8, ParamInt16: 16, ParamInt32: 32}[t]
		n, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return v, fmt.Errorf("parse %s: %w", t, err)
		}
		v.setNumeric(t, uint32(int32(n)))
	case ParamUInt8, ParamUInt16, ParamUInt32:
		bits := map[ParameterType]int{ParamUInt8: 8, ParamUInt16: 16, ParamUInt32: 32}[t]
		n, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return v, fmt.Errorf("parse %s: %w", t, err)
		}
		v.setNumeric(t, uint32(n))
	case ParamFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return v, fmt.Errorf("parse %s: %w", t, err)
		}
		v.SetFloat(float32(f))
	case ParamAscii:
		v.SetAscii(s, 0)
	case ParamText:
		v.SetText(s, 0)
	case ParamRaw:
		b, err := hex.DecodeString(s)
		if err != nil {
			return v, fmt.Errorf("parse %s: %w", t, err)
		}
		v.SetRaw(b)
	default:
		return v, fmt.Errorf("%w: unknown parameter type %d", utils.ErrTypeMismatch, t)
	}
	return v, nil
}

// EncodedSize returns the number of bytes Encode writes, excluding the type tag.
func (v ParameterValue) EncodedSize() int {
	switch v.typ {
	case ParamInt8, ParamUInt8:
		return 1
	case ParamInt16, ParamUInt16:
		return 2
	case ParamInt32, ParamUInt32, ParamFloat:
		return 4
	case ParamAscii:
		return 4 + v.reserved
	case ParamText:
		return 4 + 2*v.reserved
	case ParamRaw:
		return 4 + len(v.raw)
	default:
		return 0
	}
}

// Encode appends the type tag and the value payload.
func (v ParameterValue) Encode(e *Encoder) {
	e.PutUint8(uint8(v.typ))
	v.encodePayload(e)
}

func (v ParameterValue) encodePayload(e *Encoder) {
	switch v.typ {
	case ParamInt8, ParamUInt8:
		//nolint:gosec // G115: low byte of the stored payload
		e.PutUint8(uint8(v.bits))
	case ParamInt16, ParamUInt16:
		//nolint:gosec // G115: low half of the stored payload
		e.PutUint16(uint16(v.bits))
	case ParamInt32, ParamUInt32, ParamFloat:
		e.PutUint32(v.bits)
	case ParamAscii:
		//nolint:gosec // G115: reservation bounded by MaxStringSize on decode
		e.PutInt32(int32(v.reserved))
		e.PutFixedASCII(v.text, v.reserved)
	case ParamText:
		//nolint:gosec // G115: reservation bounded by MaxStringSize on decode
		e.PutInt32(int32(v.reserved))
		e.PutFixedText(v.text, v.reserved)
	case ParamRaw:
		//nolint:gosec // G115: raw length bounded by MaxStringSize on decode
		e.PutInt32(int32(len(v.raw)))
		e.PutBytes(v.raw)
	}
}

// DecodeParameterValue reads a type tag and its payload.
func DecodeParameterValue(d *Decoder) (ParameterValue, error) {
	at := d.Offset()
	tag, err := d.Uint8()
	if err != nil {
		return ParameterValue{}, err
	}
	t := ParameterType(tag)
	if !t.Valid() {
		return ParameterValue{}, utils.FormatError("unexpected parameter type tag %d at offset %d", tag, at)
	}
	return decodePayload(d, t)
}

func decodePayload(d *Decoder, t ParameterType) (ParameterValue, error) {
	var v ParameterValue
	switch t {
	case ParamInt8:
		x, err := d.Int8()
		v.SetInt8(x)
		return v, err
	case ParamUInt8:
		x, err := d.Uint8()
		v.SetUInt8(x)
		return v, err
	case ParamInt16:
		x, err := d.Int16()
		v.SetInt16(x)
		return v, err
	case ParamUInt16:
		x, err := d.Uint16()
		v.SetUInt16(x)
		return v, err
	case ParamInt32:
		x, err := d.Int32()
		v.SetInt32(x)
		return v, err
	case ParamUInt32:
		x, err := d.Uint32()
		v.SetUInt32(x)
		return v, err
	case ParamFloat:
		x, err := d.Float32()
		v.SetFloat(x)
		return v, err
	case ParamAscii:
		n, err := d.length("ascii value", 1)
		if err != nil {
			return v, err
		}
		b, err := d.next(n)
		if err != nil {
			return v, err
		}
		v.SetAscii(trimNUL(b), n)
		return v, nil
	case ParamText:
		n, err := d.length("text value", 2)
		if err != nil {
			return v, err
		}
		b, err := d.next(2 * n)
		if err != nil {
			return v, err
		}
		s, err := decodeUTF16(b)
		if err != nil {
			return v, err
		}
		v.SetText(s, n)
		return v, nil
	case ParamRaw:
		n, err := d.length("raw value", 1)
		if err != nil {
			return v, err
		}
		b, err := d.Bytes(n)
		if err != nil {
			return v, err
		}
		v.SetRaw(b)
		return v, nil
	}
	return v, utils.FormatError("unexpected parameter type tag %d", uint8(t))
}
