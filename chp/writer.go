package chp

import (
	"fmt"

	"github.com/scigolib/calvin"
)

type outTable struct {
	ds   *calvin.DataSet
	enc  *calvin.RowEncoder
	next int
}

// Writer fills the tables of a newly created file one entry at a time.
//
// Thread-safety: Not thread-safe. Caller must synchronize access.
type Writer struct {
	w      *calvin.Writer
	tables map[tableKey]*outTable
}

// Create writes the skeleton of spec to spec.Path. Every table starts
// zero-filled; WriteEntry fills rows in order.
func Create(spec FileSpec, opts ...calvin.CreateOption) (*Writer, error) {
	hdr, err := spec.Header()
	if err != nil {
		return nil, err
	}
	cw, err := calvin.Create(spec.Path, hdr, opts...)
	if err != nil {
		return nil, err
	}
	w := &Writer{w: cw, tables: make(map[tableKey]*outTable)}
	for _, s := range spec.DataSets {
		ds, err := cw.DataSet(s.GroupName(), s.Kind.DataSetName())
		if err != nil {
			_ = cw.Close()
			return nil, err
		}
		w.tables[tableKey{kind: s.Kind, group: s.GroupName()}] = &outTable{
			ds:  ds,
			enc: calvin.NewRowEncoder(ds.Columns()),
		}
	}
	return w, nil
}

// Path returns the file name.
func (w *Writer) Path() string { return w.w.Path() }

// Header returns the written header.
func (w *Writer) Header() *calvin.FileHeader { return w.w.Header() }

// WriteEntry writes the next entry of kind t in its default group.
func (w *Writer) WriteEntry(t DataType, e Entry) error {
	return w.WriteEntryInGroup(t, t.DefaultGroup(), e)
}

// WriteEntryInGroup writes the next entry of kind t in group.
func (w *Writer) WriteEntryInGroup(t DataType, group string, e Entry) error {
	tb, ok := w.tables[tableKey{kind: t, group: group}]
	if !ok {
		return fmt.Errorf("%w: %s in group %q of %s", calvin.ErrKindNotFound, t, group, w.Path())
	}
	if tb.next >= tb.ds.Rows() {
		return fmt.Errorf("%s: %w", t, calvin.ErrIndexOutOfRange)
	}
	if err := encodeEntry(tb.enc, t, e); err != nil {
		return err
	}
	if err := tb.ds.WriteRows(tb.next, tb.enc.Bytes()); err != nil {
		return err
	}
	tb.next++
	return nil
}

// Written returns the number of entries of kind t written to group.
func (w *Writer) Written(t DataType, group string) int {
	if tb, ok := w.tables[tableKey{kind: t, group: group}]; ok {
		return tb.next
	}
	return 0
}

// Close flushes and closes the file. Rows never written stay zero.
func (w *Writer) Close() error { return w.w.Close() }
