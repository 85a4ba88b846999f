// Copyright (c) 2025 SciGo Calvin Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package calvin

import (
	"fmt"
	"log"

	"github.com/scigolib/calvin/internal/core"
	"github.com/scigolib/calvin/internal/utils"
	"github.com/scigolib/calvin/internal/writer"
)

// DefaultMaxBufferSize is the buffered byte ceiling used when
// WithMaxBufferSize is not given.
const DefaultMaxBufferSize = 5 << 20

// SlotKey names a data set within a file.
type SlotKey struct {
	Group   string
	DataSet string
}

func (k SlotKey) String() string { return k.Group + "/" + k.DataSet }

// FileSkeleton declares one output file of a BufferWriter.
type FileSkeleton struct {
	// Path is the output file.
	Path string

	// Header is written to Path by Initialize. When nil, Path must
	// already hold a Calvin file and its layout is read instead.
	Header *FileHeader

	// Slots lists the data sets rows will be written to, in the order
	// they are flushed. Empty means every data set of the file.
	Slots []SlotKey
}

// SlotInfo describes a declared slot.
type SlotInfo struct {
	File     int
	Key      SlotKey
	Columns  []ColumnInfo
	RowCount int
	RowWidth int
}

// BufferOption configures a BufferWriter.
type BufferOption func(*BufferWriter)

// WithMaxBufferSize sets the buffered byte ceiling. Values below one row
// make every WriteRow flush.
func WithMaxBufferSize(n int) BufferOption {
	return func(w *BufferWriter) { w.maxBuffer = n }
}

// WithLogger reports flushes to l.
func WithLogger(l *log.Logger) BufferOption {
	return func(w *BufferWriter) { w.logger = l }
}

// WithCreateOptions passes options to Create for skeletons with a Header.
func WithCreateOptions(opts ...CreateOption) BufferOption {
	return func(w *BufferWriter) { w.createOpts = append(w.createOpts, opts...) }
}

type slotID struct {
	file int
	key  SlotKey
}

type slot struct {
	SlotInfo
	dataOffset int64
	cursor     int // rows already on disk
	pending    int // rows in buf
	buf        []byte
}

// BufferWriter writes rows of many data sets across many files while
// holding a bounded amount of memory.
//
// Initialize writes (or attaches to) every file skeleton and records the
// data offset of each (file, data set) slot. WriteRow appends one packed
// row to its slot's buffer; rows of a slot land on disk in call order,
// immediately after the rows flushed before them. When the bytes buffered
// across all slots exceed the ceiling, every slot with pending rows is
// flushed. The ceiling is therefore soft: it may be exceeded by the row
// that triggers the flush.
//
// A failed flush aborts the batch: the error is returned once and every
// later call reports ErrBatchAborted.
//
// Thread-safety: Not thread-safe. Caller must synchronize access.
type BufferWriter struct {
	maxBuffer  int
	logger     *log.Logger
	createOpts []CreateOption

	paths       []string
	slots       []*slot
	index       map[slotID]*slot
	buffered    int
	flushes     int
	initialized bool
	closed      bool
	err         error
}

// NewBufferWriter returns an uninitialized writer.
func NewBufferWriter(opts ...BufferOption) *BufferWriter {
	w := &BufferWriter{maxBuffer: DefaultMaxBufferSize}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// MaxBufferSize returns the buffered byte ceiling.
func (w *BufferWriter) MaxBufferSize() int { return w.maxBuffer }

func (w *BufferWriter) usable() error {
	switch {
	case w.closed:
		return ErrClosed
	case w.err != nil:
		return fmt.Errorf("%w: %w", ErrBatchAborted, w.err)
	case !w.initialized:
		return ErrNotInitialized
	}
	return nil
}

// Initialize prepares every file and slot. It may be called once.
func (w *BufferWriter) Initialize(files []FileSkeleton) error {
	switch {
	case w.closed:
		return ErrClosed
	case w.err != nil:
		return fmt.Errorf("%w: %w", ErrBatchAborted, w.err)
	case w.initialized:
		return ErrAlreadyInitialized
	}

	w.index = make(map[slotID]*slot)
	for fi, fs := range files {
		hdr, err := w.prepare(fs)
		if err != nil {
			w.err = err
			return err
		}
		if err := w.declare(fi, hdr, fs.Slots); err != nil {
			w.err = err
			return err
		}
		w.paths = append(w.paths, fs.Path)
	}
	w.initialized = true
	if w.logger != nil {
		w.logger.Printf("buffer writer: %d files, %d slots, ceiling %d bytes", len(w.paths), len(w.slots), w.maxBuffer)
	}
	return nil
}

// prepare writes the skeleton of fs, or reads the layout of an existing file.
func (w *BufferWriter) prepare(fs FileSkeleton) (*core.FileHeader, error) {
	if fs.Header != nil {
		cw, err := Create(fs.Path, fs.Header, w.createOpts...)
		if err != nil {
			return nil, err
		}
		hdr := cw.Header()
		if err := cw.Close(); err != nil {
			return nil, utils.WrapError(fmt.Sprintf("closing %s", fs.Path), err)
		}
		return hdr, nil
	}
	f, err := OpenForUpdate(fs.Path)
	if err != nil {
		return nil, err
	}
	hdr := f.Header()
	if err := f.Close(); err != nil {
		return nil, utils.WrapError(fmt.Sprintf("closing %s", fs.Path), err)
	}
	return hdr, nil
}

func (w *BufferWriter) declare(fi int, hdr *core.FileHeader, keys []SlotKey) error {
	if len(keys) == 0 {
		for _, g := range hdr.Groups {
			for _, ds := range g.DataSets {
				keys = append(keys, SlotKey{Group: g.Name, DataSet: ds.Name})
			}
		}
	}
	for _, key := range keys {
		ds, ok := hdr.DataSet(key.Group, key.DataSet)
		if !ok {
			return fmt.Errorf("%w: file %d has no data set %s", ErrKindNotFound, fi, key)
		}
		id := slotID{file: fi, key: key}
		if _, dup := w.index[id]; dup {
			return fmt.Errorf("file %d: slot %s declared twice", fi, key)
		}
		s := &slot{
			SlotInfo: SlotInfo{
				File:     fi,
				Key:      key,
				Columns:  ds.Columns,
				RowCount: ds.RowCount,
				RowWidth: ds.RowWidth(),
			},
			dataOffset: int64(ds.DataOffset),
		}
		w.slots = append(w.slots, s)
		w.index[id] = s
	}
	return nil
}

func (w *BufferWriter) lookup(file int, key SlotKey) (*slot, error) {
	s, ok := w.index[slotID{file: file, key: key}]
	if !ok {
		return nil, fmt.Errorf("%w: file %d slot %s", ErrKindNotFound, file, key)
	}
	return s, nil
}

// Slots returns the declared slots in flush order.
func (w *BufferWriter) Slots() []SlotInfo {
	out := make([]SlotInfo, len(w.slots))
	for i, s := range w.slots {
		out[i] = s.SlotInfo
	}
	return out
}

// Slot returns the description of a declared slot.
func (w *BufferWriter) Slot(file int, key SlotKey) (SlotInfo, error) {
	if err := w.usable(); err != nil {
		return SlotInfo{}, err
	}
	s, err := w.lookup(file, key)
	if err != nil {
		return SlotInfo{}, err
	}
	return s.SlotInfo, nil
}

// Encoder returns a row encoder for the schema of a slot.
func (w *BufferWriter) Encoder(file int, key SlotKey) (*RowEncoder, error) {
	info, err := w.Slot(file, key)
	if err != nil {
		return nil, err
	}
	return core.NewRowEncoder(info.Columns), nil
}

// WriteRow buffers one packed row for a slot. The row is copied.
func (w *BufferWriter) WriteRow(file int, key SlotKey, row []byte) error {
	if err := w.usable(); err != nil {
		return err
	}
	s, err := w.lookup(file, key)
	if err != nil {
		return err
	}
	if len(row) != s.RowWidth {
		return fmt.Errorf("slot %s: row has %d bytes, expected %d", key, len(row), s.RowWidth)
	}
	if next := s.cursor + s.pending; next >= s.RowCount {
		return fmt.Errorf("file %d slot %s: %w", file, key, utils.RangeError("row", next, s.RowCount))
	}
	s.buf = append(s.buf, row...)
	s.pending++
	w.buffered += len(row)
	if w.buffered > w.maxBuffer {
		return w.flush()
	}
	return nil
}

// FlushBuffer writes every pending row. With nothing pending it does nothing.
func (w *BufferWriter) FlushBuffer() error {
	if err := w.usable(); err != nil {
		return err
	}
	return w.flush()
}

// flush writes pending slots file by file, opening each file once.
func (w *BufferWriter) flush() error {
	if w.buffered == 0 {
		return nil
	}
	files, rows := 0, 0
	for fi, path := range w.paths {
		n, err := w.flushFile(fi, path)
		if err != nil {
			w.err = err
			return fmt.Errorf("%w: %w", ErrBatchAborted, err)
		}
		if n > 0 {
			files++
			rows += n
		}
	}
	if w.logger != nil {
		w.logger.Printf("buffer writer: flushed %d rows (%d bytes) to %d files", rows, w.buffered, files)
	}
	w.buffered = 0
	w.flushes++
	return nil
}

func (w *BufferWriter) flushFile(fi int, path string) (int, error) {
	var fw *writer.FileWriter
	rows := 0
	for _, s := range w.slots {
		if s.File != fi || s.pending == 0 {
			continue
		}
		if fw == nil {
			var err error
			if fw, err = writer.OpenFileWriter(path); err != nil {
				return 0, err
			}
		}
		off := s.dataOffset + int64(s.cursor)*int64(s.RowWidth)
		if _, err := fw.WriteAt(s.buf, off); err != nil {
			_ = fw.Close()
			return 0, fmt.Errorf("%s slot %s: %w", path, s.Key, err)
		}
		s.cursor += s.pending
		rows += s.pending
		s.pending = 0
		s.buf = nil
	}
	if fw == nil {
		return 0, nil
	}
	return rows, fw.Close()
}

// Close flushes pending rows. It is safe to call Close multiple times.
func (w *BufferWriter) Close() error {
	if w.closed {
		return nil
	}
	var err error
	if w.initialized && w.err == nil {
		err = w.flush()
	}
	w.closed = true
	return err
}

// BufferedBytes returns the bytes currently held in memory.
func (w *BufferWriter) BufferedBytes() int { return w.buffered }

// Flushes returns the number of flushes that wrote data.
func (w *BufferWriter) Flushes() int { return w.flushes }

// Cursor returns the number of rows of a slot already written to disk.
func (w *BufferWriter) Cursor(file int, key SlotKey) (int, error) {
	if err := w.usable(); err != nil {
		return 0, err
	}
	s, err := w.lookup(file, key)
	if err != nil {
		return 0, err
	}
	return s.cursor, nil
}

// Pending returns the number of rows of a slot held in memory.
func (w *BufferWriter) Pending(file int, key SlotKey) (int, error) {
	if err := w.usable(); err != nil {
		return 0, err
	}
	s, err := w.lookup(file, key)
	if err != nil {
		return 0, err
	}
	return s.pending, nil
}
