// Copyright (c) 2025 SciGo Calvin Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package calvin

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	namesKey  = SlotKey{Group: "g", DataSet: "names"}
	valuesKey = SlotKey{Group: "g", DataSet: "values"}
)

// twoSlotHeader has a named-row table and a plain integer table.
func twoSlotHeader(nameRows, valueRows int) *FileHeader {
	hdr := NewFileHeader("test-buffer")
	g := hdr.AddGroup("g")
	ds := g.AddDataSet(DataSetHeader{Name: "names", RowCount: nameRows})
	ds.AddColumn(ASCIIColumn("Name", 8))
	ds.AddColumn(FloatColumn("Value"))
	ds = g.AddDataSet(DataSetHeader{Name: "values", RowCount: valueRows})
	ds.AddColumn(IntColumn("V"))
	return hdr
}

func skeletons(t *testing.T, n, nameRows, valueRows int) []FileSkeleton {
	t.Helper()
	dir := t.TempDir()
	out := make([]FileSkeleton, n)
	for i := range out {
		out[i] = FileSkeleton{
			Path:   filepath.Join(dir, "out"+strconv.Itoa(i)+".chp"),
			Header: twoSlotHeader(nameRows, valueRows),
		}
	}
	return out
}

func namedRow(t *testing.T, w *BufferWriter, file int, name string, v float32) []byte {
	t.Helper()
	enc, err := w.Encoder(file, namesKey)
	require.NoError(t, err)
	require.NoError(t, enc.PutASCII(0, name))
	require.NoError(t, enc.PutFloat(1, v))
	return bytes.Clone(enc.Bytes())
}

func intRow(v int32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func readNames(t *testing.T, path string) ([]string, []float32) {
	t.Helper()
	f, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	ds, err := f.DataSet("g", "names")
	require.NoError(t, err)
	names := make([]string, ds.Rows())
	for r := range names {
		names[r], err = ds.ReadString(r, 0)
		require.NoError(t, err)
	}
	values, err := ds.ReadFloatColumn(1)
	require.NoError(t, err)
	return names, values
}

func TestBufferWriter_Interleaved(t *testing.T) {
	files := skeletons(t, 2, 2, 1)
	w := NewBufferWriter()
	require.NoError(t, w.Initialize(files))

	require.NoError(t, w.WriteRow(0, namesKey, namedRow(t, w, 0, "rowA", 1)))
	require.NoError(t, w.WriteRow(1, namesKey, namedRow(t, w, 1, "rowB", 2)))
	require.NoError(t, w.WriteRow(0, namesKey, namedRow(t, w, 0, "rowC", 3)))
	assert.Equal(t, 36, w.BufferedBytes())
	require.NoError(t, w.FlushBuffer())
	assert.Zero(t, w.BufferedBytes())

	names, values := readNames(t, files[0].Path)
	assert.Equal(t, []string{"rowA", "rowC"}, names)
	assert.Equal(t, []float32{1, 3}, values)

	names, values = readNames(t, files[1].Path)
	assert.Equal(t, []string{"rowB", ""}, names, "unwritten rows stay zero")
	assert.Equal(t, []float32{2, 0}, values)
	require.NoError(t, w.Close())
}

func TestBufferWriter_FlushIdempotent(t *testing.T) {
	files := skeletons(t, 1, 3, 3)
	w := NewBufferWriter()
	require.NoError(t, w.Initialize(files))
	require.NoError(t, w.WriteRow(0, valuesKey, intRow(7)))
	require.NoError(t, w.FlushBuffer())

	before, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	require.NoError(t, w.FlushBuffer())
	after, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, w.Flushes(), "empty flush writes nothing")

	cursor, err := w.Cursor(0, valuesKey)
	require.NoError(t, err)
	assert.Equal(t, 1, cursor)

	require.NoError(t, w.WriteRow(0, valuesKey, intRow(8)))
	require.NoError(t, w.Close())

	f, err := Open(files[0].Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	ds, err := f.DataSet("g", "values")
	require.NoError(t, err)
	v, err := ds.ReadInt32(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(8), v, "second flush appends after the cursor")
}

func TestBufferWriter_CeilingTriggersFlushAll(t *testing.T) {
	files := skeletons(t, 2, 10, 10)
	w := NewBufferWriter(WithMaxBufferSize(20))
	require.NoError(t, w.Initialize(files))

	require.NoError(t, w.WriteRow(1, valuesKey, intRow(1)))
	require.NoError(t, w.WriteRow(0, valuesKey, intRow(2)))
	require.NoError(t, w.WriteRow(0, namesKey, namedRow(t, w, 0, "a", 1)))
	assert.Equal(t, 20, w.BufferedBytes(), "at the ceiling, not over it")
	assert.Zero(t, w.Flushes())

	require.NoError(t, w.WriteRow(1, namesKey, namedRow(t, w, 1, "b", 2)))
	assert.Equal(t, 1, w.Flushes())
	assert.Zero(t, w.BufferedBytes())
	for _, key := range []SlotKey{namesKey, valuesKey} {
		for fi := range files {
			pending, err := w.Pending(fi, key)
			require.NoError(t, err)
			assert.Zero(t, pending, "every slot flushed")
			cursor, err := w.Cursor(fi, key)
			require.NoError(t, err)
			assert.Equal(t, 1, cursor)
		}
	}
	require.NoError(t, w.Close())
}

func TestBufferWriter_TinyCeilingMakesProgress(t *testing.T) {
	files := skeletons(t, 1, 5, 5)
	w := NewBufferWriter(WithMaxBufferSize(1))
	require.NoError(t, w.Initialize(files))
	for i := range 5 {
		require.NoError(t, w.WriteRow(0, valuesKey, intRow(int32(i*10))))
		assert.Zero(t, w.BufferedBytes())
	}
	assert.Equal(t, 5, w.Flushes())
	require.NoError(t, w.Close())

	f, err := Open(files[0].Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	ds, err := f.DataSet("g", "values")
	require.NoError(t, err)
	for i := range 5 {
		v, err := ds.ReadInt32(i, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(i*10), v)
	}
}

func TestBufferWriter_AttachToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.chp")
	cw, err := Create(path, twoSlotHeader(2, 2))
	require.NoError(t, err)
	ds, err := cw.DataSet("g", "values")
	require.NoError(t, err)
	require.NoError(t, ds.WriteCell(0, 0, Int32Value(22)))
	require.NoError(t, ds.WriteCell(1, 0, Int32Value(44)))
	require.NoError(t, cw.Close())

	w := NewBufferWriter()
	require.NoError(t, w.Initialize([]FileSkeleton{{Path: path, Slots: []SlotKey{valuesKey}}}))
	slots := w.Slots()
	require.Len(t, slots, 1)
	assert.Equal(t, 2, slots[0].RowCount)

	require.NoError(t, w.WriteRow(0, valuesKey, intRow(33)))
	require.NoError(t, w.FlushBuffer())
	require.NoError(t, w.Close())

	f, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	set, err := f.DataSet("g", "values")
	require.NoError(t, err)
	v, err := set.ReadInt32(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(33), v, "buffered row replaces the earlier value")
	v, err = set.ReadInt32(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(44), v)
}

func TestBufferWriter_StateErrors(t *testing.T) {
	files := skeletons(t, 1, 1, 1)

	w := NewBufferWriter()
	require.ErrorIs(t, w.WriteRow(0, valuesKey, intRow(1)), ErrNotInitialized)
	require.ErrorIs(t, w.FlushBuffer(), ErrNotInitialized)
	_, err := w.Encoder(0, valuesKey)
	require.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, w.Initialize(files))
	require.ErrorIs(t, w.Initialize(files), ErrAlreadyInitialized)

	require.ErrorIs(t, w.WriteRow(1, valuesKey, intRow(1)), ErrKindNotFound)
	require.ErrorIs(t, w.WriteRow(0, SlotKey{Group: "g", DataSet: "other"}, intRow(1)), ErrKindNotFound)
	require.Error(t, w.WriteRow(0, valuesKey, []byte{1, 2}), "wrong row width")

	require.NoError(t, w.WriteRow(0, valuesKey, intRow(1)))
	require.ErrorIs(t, w.WriteRow(0, valuesKey, intRow(2)), ErrIndexOutOfRange, "slot is full")

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.ErrorIs(t, w.WriteRow(0, valuesKey, intRow(1)), ErrClosed)
	require.ErrorIs(t, w.Initialize(files), ErrClosed)
}

func TestBufferWriter_UndeclaredSlotInInitialize(t *testing.T) {
	files := skeletons(t, 1, 1, 1)
	files[0].Slots = []SlotKey{{Group: "g", DataSet: "missing"}}
	w := NewBufferWriter()
	require.ErrorIs(t, w.Initialize(files), ErrKindNotFound)
	require.ErrorIs(t, w.FlushBuffer(), ErrBatchAborted)
}

func TestBufferWriter_FlushFailureAbortsBatch(t *testing.T) {
	files := skeletons(t, 2, 2, 2)
	w := NewBufferWriter()
	require.NoError(t, w.Initialize(files))
	require.NoError(t, w.WriteRow(1, valuesKey, intRow(5)))
	require.NoError(t, os.Remove(files[1].Path))

	err := w.FlushBuffer()
	require.ErrorIs(t, err, ErrBatchAborted)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.ErrorIs(t, w.WriteRow(0, valuesKey, intRow(1)), ErrBatchAborted)
	require.ErrorIs(t, w.FlushBuffer(), ErrBatchAborted)
	require.NoError(t, w.Close(), "nothing more is written after an abort")
}

func TestBufferWriter_Logger(t *testing.T) {
	var buf bytes.Buffer
	files := skeletons(t, 1, 1, 1)
	w := NewBufferWriter(WithLogger(log.New(&buf, "", 0)))
	require.NoError(t, w.Initialize(files))
	require.NoError(t, w.WriteRow(0, valuesKey, intRow(1)))
	require.NoError(t, w.Close())
	assert.Contains(t, buf.String(), "1 files, 2 slots")
	assert.Contains(t, buf.String(), "flushed 1 rows (4 bytes) to 1 files")
}

func TestBufferWriter_Defaults(t *testing.T) {
	w := NewBufferWriter()
	assert.Equal(t, DefaultMaxBufferSize, w.MaxBufferSize())
	assert.Equal(t, "g/names", namesKey.String())
}
