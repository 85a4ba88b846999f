package compare

import (
	"slices"
	"strconv"

	"github.com/scigolib/calvin/dat"
)

// datToken is one integer field of a scan header string.
type datToken struct {
	name  string
	token string
}

// datHeaderTokens are compared one by one, each as an integer, unless the
// name is in ignoredDATHeaderFields.
var datHeaderTokens = [...]datToken{
	{name: "CLS", token: dat.ColsToken},
	{name: "RWS", token: dat.RowsToken},
	{name: "XIN", token: dat.XInToken},
	{name: "YIN", token: dat.YInToken},
	{name: "VE", token: dat.ScanSpeedToken},
}

// ignoredDATHeaderFields are known to differ between a GCOS header and the
// Calvin header converted from it.
var ignoredDATHeaderFields = [...]string{
	"algorithm name",
	"DAT file name",
	"VE",
}

// IgnoredDATHeaderFields returns the scan header fields CompareDATHeaders
// never reports.
func IgnoredDATHeaderFields() []string {
	out := make([]string, len(ignoredDATHeaderFields))
	copy(out, ignoredDATHeaderFields[:])
	return out
}

func ignoredDATHeaderField(name string) bool {
	return slices.Contains(ignoredDATHeaderFields[:], name)
}

// CompareDATHeaders compares the pixel range bounds and the integer tokens of
// two scan header strings independently. Fields listed by
// IgnoredDATHeaderFields are skipped; the algorithm and file names are never
// extracted.
func CompareDATHeaders(expected, actual string) []Difference {
	var out []Difference
	if expected == actual {
		return nil
	}

	elo, ehi, eerr := dat.PixelRange(expected)
	alo, ahi, aerr := dat.PixelRange(actual)
	switch {
	case eerr != nil || aerr != nil:
		if errText(eerr) != errText(aerr) {
			out = append(out, headerDiff("DAT header range", errText(eerr), errText(aerr)))
		}
	default:
		if elo != alo {
			out = append(out, headerDiff("DAT header range min", strconv.Itoa(elo), strconv.Itoa(alo)))
		}
		if ehi != ahi {
			out = append(out, headerDiff("DAT header range max", strconv.Itoa(ehi), strconv.Itoa(ahi)))
		}
	}

	for _, f := range datHeaderTokens {
		if ignoredDATHeaderField(f.name) {
			continue
		}
		e := tokenText(expected, f.token)
		a := tokenText(actual, f.token)
		if e != a {
			out = append(out, headerDiff("DAT header "+f.name, e, a))
		}
	}
	return out
}

func tokenText(s, token string) string {
	v, ok, err := dat.TokenValue(s, token)
	switch {
	case err != nil:
		return "invalid"
	case !ok:
		return "missing"
	}
	return strconv.Itoa(v)
}

func errText(err error) string {
	if err != nil {
		return "invalid"
	}
	return "ok"
}
