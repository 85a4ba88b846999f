package core

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"golang.org/x/text/encoding/unicode"

	"github.com/scigolib/calvin/internal/utils"
)

// Calvin streams are big-endian throughout; wide strings are UTF-16BE.
var (
	byteOrder = binary.BigEndian
	utf16BE   = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
)

// utf16Units returns the number of UTF-16 code units needed for s.
// Invalid UTF-8 bytes count as one unit each, matching the U+FFFD the encoder emits.
func utf16Units(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// encodeUTF16 returns the UTF-16BE encoding of s.
func encodeUTF16(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := utf16BE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		// The UTF-16 encoder substitutes invalid input instead of failing,
		// so this is unreachable in practice.
		return make([]byte, 2*utf16Units(s))
	}
	return b
}

// decodeUTF16 decodes UTF-16BE bytes, stopping at the first NUL code unit.
func decodeUTF16(b []byte) (string, error) {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			b = b[:i]
			break
		}
	}
	if len(b) == 0 {
		return "", nil
	}
	out, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return "", utils.FormatError("invalid UTF-16 text: %v", err)
	}
	return string(out), nil
}

// trimNUL returns the prefix of b before its first NUL byte.
func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// String8Size is the encoded size of a string8 field.
func String8Size(s string) int { return 4 + len(s) }

// String16Size is the encoded size of a string16 field.
func String16Size(s string) int { return 4 + 2*utf16Units(s) }

// Encoder appends big-endian Calvin primitives to a byte slice.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with the given initial capacity.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded bytes. The slice aliases the encoder's storage.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int { return len(e.buf) }

// Reset discards the encoded bytes, keeping capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// PutUint8 appends one byte.
func (e *Encoder) PutUint8(v uint8) { e.buf = append(e.buf, v) }

// PutInt8 appends one signed byte.
func (e *Encoder) PutInt8(v int8) { e.buf = append(e.buf, byte(v)) }

// PutUint16 appends a big-endian uint16.
func (e *Encoder) PutUint16(v uint16) { e.buf = byteOrder.AppendUint16(e.buf, v) }

// PutInt16 appends a big-endian int16.
func (e *Encoder) PutInt16(v int16) { e.buf = byteOrder.AppendUint16(e.buf, uint16(v)) }

// PutUint32 appends a big-endian uint32.
func (e *Encoder) PutUint32(v uint32) { e.buf = byteOrder.AppendUint32(e.buf, v) }

// PutInt32 appends a big-endian int32.
func (e *Encoder) PutInt32(v int32) { e.buf = byteOrder.AppendUint32(e.buf, uint32(v)) }

// PutFloat32 appends an IEEE 754 single in big-endian order.
func (e *Encoder) PutFloat32(v float32) { e.buf = byteOrder.AppendUint32(e.buf, math.Float32bits(v)) }

// PutBytes appends raw bytes.
func (e *Encoder) PutBytes(b []byte) { e.buf = append(e.buf, b...) }

// PutZeros appends n zero bytes.
func (e *Encoder) PutZeros(n int) {
	for ; n > 0; n-- {
		e.buf = append(e.buf, 0)
	}
}

// PutString8 appends an i32 byte count followed by the bytes of s.
func (e *Encoder) PutString8(s string) {
	//nolint:gosec // G115: string lengths are bounded by MaxStringSize at the API edge
	e.PutInt32(int32(len(s)))
	e.buf = append(e.buf, s...)
}

// PutString16 appends an i32 UTF-16 unit count followed by UTF-16BE units.
func (e *Encoder) PutString16(s string) {
	//nolint:gosec // G115: string lengths are bounded by MaxStringSize at the API edge
	e.PutInt32(int32(utf16Units(s)))
	e.buf = append(e.buf, encodeUTF16(s)...)
}

// PutFixedASCII appends s NUL padded (or truncated) to exactly width bytes.
func (e *Encoder) PutFixedASCII(s string, width int) {
	if len(s) > width {
		s = s[:width]
	}
	e.buf = append(e.buf, s...)
	e.PutZeros(width - len(s))
}

// PutFixedText appends s as UTF-16BE NUL padded (or truncated) to width code units.
func (e *Encoder) PutFixedText(s string, width int) {
	b := encodeUTF16(s)
	if len(b) > 2*width {
		b = b[:2*width]
	}
	e.buf = append(e.buf, b...)
	e.PutZeros(2*width - len(b))
}

const decoderWindow = 4096

// Decoder reads big-endian Calvin primitives from an io.ReaderAt, keeping a
// small read-ahead window so field-by-field header parsing stays cheap.
type Decoder struct {
	r     io.ReaderAt
	off   int64
	win   []byte
	start int64
}

// NewDecoder returns a decoder positioned at off.
func NewDecoder(r io.ReaderAt, off int64) *Decoder {
	return &Decoder{r: r, off: off}
}

// Offset returns the current absolute position.
func (d *Decoder) Offset() int64 { return d.off }

// SeekTo moves the decoder to an absolute position.
func (d *Decoder) SeekTo(off int64) { d.off = off }

// next returns the following n bytes, advancing the position.
// The returned slice is only valid until the next call.
func (d *Decoder) next(n int) ([]byte, error) {
	if n < 0 {
		return nil, utils.FormatError("negative length %d at offset %d", n, d.off)
	}
	if d.off >= d.start && d.off+int64(n) <= d.start+int64(len(d.win)) {
		p := d.win[d.off-d.start : d.off-d.start+int64(n)]
		d.off += int64(n)
		return p, nil
	}
	size := max(n, decoderWindow)
	if cap(d.win) < size {
		d.win = make([]byte, size)
	}
	d.win = d.win[:size]
	got, err := d.r.ReadAt(d.win, d.off)
	if got < n {
		d.win = d.win[:0]
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, utils.FormatError("truncated stream: wanted %d bytes at offset %d, got %d", n, d.off, got)
		}
		return nil, err
	}
	d.win = d.win[:got]
	d.start = d.off
	d.off += int64(n)
	return d.win[:n], nil
}

// Uint8 reads one byte.
func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int8 reads one signed byte.
func (d *Decoder) Int8() (int8, error) {
	v, err := d.Uint8()
	return int8(v), err
}

// Uint16 reads a big-endian uint16.
func (d *Decoder) Uint16() (uint16, error) {
	b, err := d.next(2)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint16(b), nil
}

// Int16 reads a big-endian int16.
func (d *Decoder) Int16() (int16, error) {
	v, err := d.Uint16()
	return int16(v), err
}

// Uint32 reads a big-endian uint32.
func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.next(4)
	if err != nil {
		return 0, err
	}
	return byteOrder.Uint32(b), nil
}

// Int32 reads a big-endian int32.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

// Float32 reads a big-endian IEEE 754 single.
func (d *Decoder) Float32() (float32, error) {
	v, err := d.Uint32()
	return math.Float32frombits(v), err
}

// Bytes reads n bytes into a fresh slice.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	b, err := d.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Count reads an i32 element count, rejecting negative or absurd values.
func (d *Decoder) Count(what string) (int, error) {
	at := d.off
	n, err := d.Int32()
	if err != nil {
		return 0, err
	}
	if n < 0 || n > utils.MaxListCount {
		return 0, utils.FormatError("invalid %s count %d at offset %d", what, n, at)
	}
	return int(n), nil
}

func (d *Decoder) length(what string, unit int) (int, error) {
	at := d.off
	n, err := d.Int32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int64(n)*int64(unit) > utils.MaxStringSize {
		return 0, utils.FormatError("invalid %s length %d at offset %d", what, n, at)
	}
	return int(n), nil
}

// String8 reads an i32 byte count and that many bytes.
func (d *Decoder) String8() (string, error) {
	n, err := d.length("string8", 1)
	if err != nil {
		return "", err
	}
	b, err := d.next(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// String16 reads an i32 UTF-16 unit count and that many UTF-16BE units.
func (d *Decoder) String16() (string, error) {
	n, err := d.length("string16", 2)
	if err != nil {
		return "", err
	}
	b, err := d.next(2 * n)
	if err != nil {
		return "", err
	}
	return decodeUTF16(b)
}
