package chp

import (
	"fmt"

	"github.com/scigolib/calvin"
)

// encodeEntry packs e into enc, whose schema is that of a table of kind t.
func encodeEntry(enc *calvin.RowEncoder, t DataType, e Entry) error {
	if e == nil || !entryMatches(t, e) {
		return fmt.Errorf("%w: %T is not a %s entry", calvin.ErrTypeMismatch, e, t)
	}
	vals := e.values()
	if n := len(enc.Columns()); len(vals) != n {
		return fmt.Errorf("%w: %s entry has %d values, table has %d columns",
			calvin.ErrTypeMismatch, t, len(vals), n)
	}
	enc.Reset()
	for i, v := range vals {
		if err := enc.Put(i, v); err != nil {
			return fmt.Errorf("%s column %d: %w", t, i, err)
		}
	}
	return nil
}

// decodeEntry unpacks a row of a table of kind t.
func decodeEntry(dec *calvin.RowDecoder, t DataType, row []byte) (Entry, error) {
	if err := dec.SetRow(row); err != nil {
		return nil, err
	}
	vals, err := dec.Values()
	if err != nil {
		return nil, err
	}
	e := NewEntry(t)
	r := &valueReader{vals: vals}
	e.setValues(r)
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", t, r.err)
	}
	return e, nil
}

// checkSchema verifies that cols starts with the fixed columns of kind t.
func checkSchema(t DataType, cols []calvin.ColumnInfo) error {
	fixed := t.FixedColumns(1)
	if len(cols) < len(fixed) {
		return fmt.Errorf("%w: %s has %d columns, expected at least %d",
			calvin.ErrFileFormat, t, len(cols), len(fixed))
	}
	for i, c := range fixed {
		if cols[i].Type != c.Type {
			return fmt.Errorf("%w: %s column %d (%s) is %s, expected %s",
				calvin.ErrFileFormat, t, i, c.Name, cols[i].Type, c.Type)
		}
	}
	return nil
}
