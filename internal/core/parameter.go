package core

import (
	"iter"
	"strings"
)

// NameValue is one named parameter.
type NameValue struct {
	Name  string
	Value ParameterValue
}

// EncodedSize returns the serialized size: string16 name, tag, payload.
func (nv NameValue) EncodedSize() int {
	return String16Size(nv.Name) + 1 + nv.Value.EncodedSize()
}

// ParameterList is an ordered list of named values. Names need not be
// unique; lookups return the first match.
type ParameterList struct {
	items []NameValue
}

// NewParameterList returns a list holding the given pairs in order.
func NewParameterList(items ...NameValue) ParameterList {
	return ParameterList{items: append([]NameValue(nil), items...)}
}

// Add appends a pair.
func (l *ParameterList) Add(name string, value ParameterValue) {
	l.items = append(l.items, NameValue{Name: name, Value: value})
}

// Find returns the first value named name.
func (l ParameterList) Find(name string) (ParameterValue, bool) {
	for _, nv := range l.items {
		if nv.Name == name {
			return nv.Value, true
		}
	}
	return ParameterValue{}, false
}

// FindString returns the display string of the first value named name, or
// "" when there is none. Absence is not an error.
func (l ParameterList) FindString(name string) string {
	v, ok := l.Find(name)
	if !ok {
		return ""
	}
	return v.String()
}

// Update replaces the first value named name, appending when absent.
// Text kinds keep their reserved length when rewritten with the same kind.
func (l *ParameterList) Update(name string, value ParameterValue) {
	for i := range l.items {
		if l.items[i].Name != name {
			continue
		}
		old := l.items[i].Value
		if old.typ == value.typ && value.typ.IsText() && old.reserved > value.reserved {
			value.reserved = old.reserved
		}
		l.items[i].Value = value
		return
	}
	l.Add(name, value)
}

// Len returns the number of pairs.
func (l ParameterList) Len() int { return len(l.items) }

// At returns the i-th pair.
func (l ParameterList) At(i int) NameValue { return l.items[i] }

// All iterates over the pairs in insertion order.
func (l ParameterList) All() iter.Seq2[string, ParameterValue] {
	return func(yield func(string, ParameterValue) bool) {
		for _, nv := range l.items {
			if !yield(nv.Name, nv.Value) {
				return
			}
		}
	}
}

// Items returns a copy of the pairs.
func (l ParameterList) Items() []NameValue {
	return append([]NameValue(nil), l.items...)
}

// Clear removes every pair.
func (l *ParameterList) Clear() { l.items = nil }

// WithPrefix returns the pairs whose name starts with prefix, with the
// prefix stripped from the returned names.
func (l ParameterList) WithPrefix(prefix string) ParameterList {
	var out ParameterList
	for _, nv := range l.items {
		if rest, ok := strings.CutPrefix(nv.Name, prefix); ok {
			out.Add(rest, nv.Value)
		}
	}
	return out
}

// Clone returns an independent copy.
func (l ParameterList) Clone() ParameterList {
	out := ParameterList{items: make([]NameValue, len(l.items))}
	for i, nv := range l.items {
		if nv.Value.raw != nil {
			nv.Value.raw = append([]byte(nil), nv.Value.raw...)
		}
		out.items[i] = nv
	}
	return out
}

// EncodedSize returns the serialized size including the u32 count.
func (l ParameterList) EncodedSize() int {
	n := 4
	for _, nv := range l.items {
		n += nv.EncodedSize()
	}
	return n
}

// Encode appends the count followed by each pair.
func (l ParameterList) Encode(e *Encoder) {
	//nolint:gosec // G115: list sizes are bounded by MaxListCount
	e.PutUint32(uint32(len(l.items)))
	for _, nv := range l.items {
		e.PutString16(nv.Name)
		nv.Value.Encode(e)
	}
}

// DecodeParameterList reads a count-prefixed parameter list.
func DecodeParameterList(d *Decoder) (ParameterList, error) {
	n, err := d.Count("parameter")
	if err != nil {
		return ParameterList{}, err
	}
	l := ParameterList{items: make([]NameValue, 0, n)}
	for range n {
		name, err := d.String16()
		if err != nil {
			return ParameterList{}, err
		}
		v, err := DecodeParameterValue(d)
		if err != nil {
			return ParameterList{}, err
		}
		l.Add(name, v)
	}
	return l, nil
}
