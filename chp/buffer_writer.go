package chp

import (
	"fmt"

	"github.com/scigolib/calvin"
)

type slotRef struct {
	file int
	kind DataType
	grp  string
}

// BufferWriter writes entries of many kinds across many CHP files while
// holding a bounded amount of memory. It encodes entries and delegates
// buffering and flushing to calvin.BufferWriter.
//
// Thread-safety: Not thread-safe. Caller must synchronize access.
type BufferWriter struct {
	bw       *calvin.BufferWriter
	encoders map[slotRef]*calvin.RowEncoder
}

// NewBufferWriter returns an uninitialized writer.
func NewBufferWriter(opts ...calvin.BufferOption) *BufferWriter {
	return &BufferWriter{
		bw:       calvin.NewBufferWriter(opts...),
		encoders: make(map[slotRef]*calvin.RowEncoder),
	}
}

// Initialize creates one file per spec. Slots are flushed in the order the
// data sets are declared.
func (w *BufferWriter) Initialize(specs []FileSpec) error {
	skeletons := make([]calvin.FileSkeleton, 0, len(specs))
	for _, s := range specs {
		hdr, err := s.Header()
		if err != nil {
			return err
		}
		sk := calvin.FileSkeleton{Path: s.Path, Header: hdr}
		for _, ds := range s.DataSets {
			sk.Slots = append(sk.Slots, calvin.SlotKey{Group: ds.GroupName(), DataSet: ds.Kind.DataSetName()})
		}
		skeletons = append(skeletons, sk)
	}
	return w.bw.Initialize(skeletons)
}

// Attach prepares existing files for writing. kinds selects the tables in
// their default groups; an empty list selects every table of each file.
func (w *BufferWriter) Attach(paths []string, kinds []DataType) error {
	skeletons := make([]calvin.FileSkeleton, 0, len(paths))
	for _, p := range paths {
		f, err := Open(p)
		if err != nil {
			return err
		}
		_ = f.Close()
		sk := calvin.FileSkeleton{Path: p}
		for _, t := range kinds {
			sk.Slots = append(sk.Slots, calvin.SlotKey{Group: t.DefaultGroup(), DataSet: t.DataSetName()})
		}
		skeletons = append(skeletons, sk)
	}
	return w.bw.Initialize(skeletons)
}

// WriteEntry buffers the next entry of kind t for file fileIndex, in the
// kind's default group.
func (w *BufferWriter) WriteEntry(t DataType, fileIndex int, e Entry) error {
	return w.WriteEntryInGroup(t, t.DefaultGroup(), fileIndex, e)
}

// WriteEntryInGroup buffers the next entry of kind t stored in group.
func (w *BufferWriter) WriteEntryInGroup(t DataType, group string, fileIndex int, e Entry) error {
	if !t.Valid() {
		return fmt.Errorf("%w: data type %d", calvin.ErrKindNotFound, int(t))
	}
	ref := slotRef{file: fileIndex, kind: t, grp: group}
	key := calvin.SlotKey{Group: group, DataSet: t.DataSetName()}
	enc, ok := w.encoders[ref]
	if !ok {
		var err error
		if enc, err = w.bw.Encoder(fileIndex, key); err != nil {
			return err
		}
		w.encoders[ref] = enc
	}
	if err := encodeEntry(enc, t, e); err != nil {
		return err
	}
	return w.bw.WriteRow(fileIndex, key, enc.Bytes())
}

// FlushBuffer writes every buffered entry.
func (w *BufferWriter) FlushBuffer() error { return w.bw.FlushBuffer() }

// Close flushes buffered entries. It is safe to call Close multiple times.
func (w *BufferWriter) Close() error { return w.bw.Close() }

// BufferedBytes returns the bytes currently held in memory.
func (w *BufferWriter) BufferedBytes() int { return w.bw.BufferedBytes() }

// Flushes returns the number of flushes that wrote data.
func (w *BufferWriter) Flushes() int { return w.bw.Flushes() }

// Written returns the entries of kind t already written to disk for a file.
func (w *BufferWriter) Written(t DataType, fileIndex int) (int, error) {
	return w.bw.Cursor(fileIndex, calvin.SlotKey{Group: t.DefaultGroup(), DataSet: t.DataSetName()})
}
