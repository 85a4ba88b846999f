package calvin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		mode    CreateMode
		wantErr bool
		setup   func(t *testing.T, filename string)
	}{
		{name: "create new file with truncate mode", mode: CreateTruncate},
		{name: "create file with exclusive mode", mode: CreateExclusive},
		{
			name:    "exclusive mode fails if file exists",
			mode:    CreateExclusive,
			wantErr: true,
			setup: func(t *testing.T, filename string) {
				require.NoError(t, os.WriteFile(filename, []byte("x"), 0o644))
			},
		},
		{
			name: "truncate mode overwrites existing file",
			mode: CreateTruncate,
			setup: func(t *testing.T, filename string) {
				require.NoError(t, os.WriteFile(filename, bytes.Repeat([]byte{0xff}, 5000), 0o644))
			},
		},
		{name: "invalid mode", mode: CreateMode(7), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "test.cel")
			if tt.setup != nil {
				tt.setup(t, filename)
			}
			w, err := Create(filename, sampleHeader(), WithCreateMode(tt.mode), fixedClock)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, w.Close())

			f, err := Open(filename)
			require.NoError(t, err)
			defer func() { _ = f.Close() }()
			assert.Equal(t, "affymetrix-calvin-intensity", f.FileTypeID())
			assert.Equal(t, 2, f.NumDataGroups())
			info, err := os.Stat(filename)
			require.NoError(t, err)
			assert.Equal(t, info.Size(), f.Size())
		})
	}
}

func TestCreate_DoesNotModifyInput(t *testing.T) {
	hdr := sampleHeader()
	hdr.Generic.FileID = ""
	_, err := Create(filepath.Join(t.TempDir(), "a.cel"), hdr, fixedClock)
	require.NoError(t, err)
	assert.Empty(t, hdr.Generic.FileID)
	assert.Empty(t, hdr.Generic.CreationTime)
	assert.Zero(t, hdr.Groups[0].DataSets[0].DataOffset)
}

func TestCreate_FillsIdentity(t *testing.T) {
	hdr := sampleHeader()
	hdr.Generic.FileID = ""
	w, err := Create(filepath.Join(t.TempDir(), "a.cel"), hdr, fixedClock)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Len(t, w.Header().Generic.FileID, 26, "ULID identifier")
	assert.Equal(t, "2025-03-14T09:26:53Z", w.Header().Generic.CreationTime)
}

func TestCreate_OffsetsPatched(t *testing.T) {
	path, w := createSample(t)
	require.NoError(t, w.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	hdr := w.Header()
	first := binary.BigEndian.Uint32(data[6:10])
	assert.Equal(t, hdr.Groups[0].Offset, first)
	assert.NotZero(t, first)

	g0 := &hdr.Groups[0]
	next := binary.BigEndian.Uint32(data[g0.NextOffsetPosition():])
	assert.Equal(t, hdr.Groups[1].Offset, next)
	g1 := &hdr.Groups[1]
	assert.Zero(t, binary.BigEndian.Uint32(data[g1.NextOffsetPosition():]), "last group has no successor")

	for _, g := range hdr.Groups {
		for _, ds := range g.DataSets {
			assert.Equal(t, ds.DataOffset, binary.BigEndian.Uint32(data[ds.HeaderOffset:]), ds.Name)
			assert.Equal(t, ds.NextOffset, binary.BigEndian.Uint32(data[ds.HeaderOffset+4:]), ds.Name)
		}
	}
	last := g1.DataSets[len(g1.DataSets)-1]
	assert.Equal(t, int(last.NextOffset), len(data))
}

func TestCreate_MatchesForwardStream(t *testing.T) {
	path, w := createSample(t)
	require.NoError(t, w.Close())
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := WriteTo(&buf, sampleHeader(), nil, fixedClock)
	require.NoError(t, err)
	assert.Equal(t, int64(len(onDisk)), n)
	assert.Equal(t, onDisk, buf.Bytes(), "back-patched and single-pass layouts agree")
}

func TestWriteTo_RowSource(t *testing.T) {
	hdr := NewFileHeader("test")
	hdr.Generic.FileID = "id"
	hdr.Generic.CreationTime = "2025-01-01T00:00:00Z"
	ds := hdr.AddGroup("g").AddDataSet(DataSetHeader{Name: "v", RowCount: 3})
	ds.AddColumn(IntColumn("v"))

	rows := []byte{0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3}
	var buf bytes.Buffer
	_, err := WriteTo(&buf, hdr, func(g, d int) io.Reader { return bytes.NewReader(rows) })
	require.NoError(t, err)

	f, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	set, err := f.DataSet("g", "v")
	require.NoError(t, err)
	for i := range 3 {
		v, err := set.ReadInt32(i, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(i+1), v)
	}

	_, err = WriteTo(&buf, hdr, func(g, d int) io.Reader { return bytes.NewReader(rows[:5]) })
	require.Error(t, err, "short row source")
}

func TestCreate_RejectsOversizedLayout(t *testing.T) {
	hdr := NewFileHeader("big")
	ds := hdr.AddGroup("g").AddDataSet(DataSetHeader{Name: "huge", RowCount: 1 << 30})
	ds.AddColumn(FloatColumn("a"))
	ds.AddColumn(FloatColumn("b"))

	path := filepath.Join(t.TempDir(), "big.cel")
	_, err := Create(path, hdr)
	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "nothing written for an invalid layout")
}

func TestCreate_ParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch", "run1", "a.chp")
	w, err := Create(path, sampleHeader())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, err = os.Stat(path)
	require.NoError(t, err)
}
