package dat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scigolib/calvin"
)

// HeaderFields are the values encoded in a GCOS scan header string, e.g.
//
//	[0..46001]  chip.dat:CLS=4733 RWS=4733 XIN=1  YIN=1  VE=30  2.0 05/24/05 14:31:41
type HeaderFields struct {
	MinPixel, MaxPixel int
	FileName           string
	Cols, Rows         int // CLS=, RWS=
	XIn, YIn           int // pixel size in microns, XIN=, YIN=
	ScanSpeed          int // VE=, -1 when absent
}

// Header tokens.
const (
	ColsToken      = "CLS="
	RowsToken      = "RWS="
	XInToken       = "XIN="
	YInToken       = "YIN="
	ScanSpeedToken = "VE="
)

// ParseHeaderString extracts the pixel range and the CLS, RWS, XIN, YIN and
// VE tokens. All but VE are required.
func ParseHeaderString(s string) (HeaderFields, error) {
	var h HeaderFields
	lo, hi, rest, err := pixelRange(s)
	if err != nil {
		return h, err
	}
	h.MinPixel, h.MaxPixel = lo, hi
	if name, _, ok := strings.Cut(rest, ":"); ok {
		h.FileName = strings.TrimSpace(name)
	}
	for _, f := range []struct {
		token string
		dst   *int
	}{
		{ColsToken, &h.Cols},
		{RowsToken, &h.Rows},
		{XInToken, &h.XIn},
		{YInToken, &h.YIn},
	} {
		v, ok, err := TokenValue(s, f.token)
		if err != nil {
			return h, err
		}
		if !ok {
			return h, fmt.Errorf("%w: scan header has no %s", calvin.ErrFileFormat, f.token)
		}
		*f.dst = v
	}
	v, ok, err := TokenValue(s, ScanSpeedToken)
	if err != nil {
		return h, err
	}
	if !ok {
		v = -1
	}
	h.ScanSpeed = v
	return h, nil
}

// PixelRange returns the bracketed [min..max] pixel range of a header string.
func PixelRange(s string) (lo, hi int, err error) {
	lo, hi, _, err = pixelRange(s)
	return lo, hi, err
}

func pixelRange(s string) (lo, hi int, rest string, err error) {
	open := strings.IndexByte(s, '[')
	end := strings.IndexByte(s, ']')
	if open < 0 || end < open {
		return 0, 0, "", fmt.Errorf("%w: scan header has no pixel range", calvin.ErrFileFormat)
	}
	a, b, ok := strings.Cut(s[open+1:end], "..")
	if !ok {
		return 0, 0, "", fmt.Errorf("%w: malformed pixel range %q", calvin.ErrFileFormat, s[open:end+1])
	}
	if lo, err = strconv.Atoi(strings.TrimSpace(a)); err != nil {
		return 0, 0, "", fmt.Errorf("%w: pixel range: %w", calvin.ErrFileFormat, err)
	}
	if hi, err = strconv.Atoi(strings.TrimSpace(b)); err != nil {
		return 0, 0, "", fmt.Errorf("%w: pixel range: %w", calvin.ErrFileFormat, err)
	}
	return lo, hi, s[end+1:], nil
}

// TokenValue returns the integer following token in s. ok is false when the
// token does not occur.
func TokenValue(s, token string) (v int, ok bool, err error) {
	i := strings.Index(s, token)
	if i < 0 {
		return 0, false, nil
	}
	digits := s[i+len(token):]
	n := 0
	for n < len(digits) && (digits[n] >= '0' && digits[n] <= '9' || n == 0 && digits[n] == '-') {
		n++
	}
	v, err = strconv.Atoi(digits[:n])
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s value %q", calvin.ErrFileFormat, token, digits[:n])
	}
	return v, true, nil
}
