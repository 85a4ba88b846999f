package writer

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/calvin/internal/utils"
)

func TestNewFileWriter(t *testing.T) {
	tests := []struct {
		name    string
		mode    CreateMode
		setup   func(t *testing.T, filename string)
		wantErr bool
	}{
		{name: "truncate new file", mode: ModeTruncate},
		{
			name: "truncate existing file",
			mode: ModeTruncate,
			setup: func(t *testing.T, filename string) {
				require.NoError(t, os.WriteFile(filename, []byte("old content"), 0o644))
			},
		},
		{name: "exclusive new file", mode: ModeExclusive},
		{
			name: "exclusive existing file",
			mode: ModeExclusive,
			setup: func(t *testing.T, filename string) {
				require.NoError(t, os.WriteFile(filename, []byte("x"), 0o644))
			},
			wantErr: true,
		},
		{name: "invalid mode", mode: CreateMode(99), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "out.calvin")
			if tt.setup != nil {
				tt.setup(t, filename)
			}
			w, err := NewFileWriter(filename, tt.mode)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer func() { _ = w.Close() }()
			assert.Equal(t, uint64(0), w.EndOfFile())

			info, err := os.Stat(filename)
			require.NoError(t, err)
			assert.Zero(t, info.Size())
		})
	}
}

func TestNewFileWriter_CreatesParentDirectories(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "a", "b", "c.chp")
	w, err := NewFileWriter(filename, ModeTruncate)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	_, err = os.Stat(filename)
	require.NoError(t, err)
}

func TestFileWriter_AppendAndPatch(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "patch.bin")
	w, err := NewFileWriter(filename, ModeTruncate)
	require.NoError(t, err)

	placeholder, err := w.Append("offset placeholder", make([]byte, 4))
	require.NoError(t, err)
	body, err := w.Append("body", []byte("payload"))
	require.NoError(t, err)
	zeros, err := w.AppendZeros("rows", 100000)
	require.NoError(t, err)
	require.Equal(t, uint64(11), zeros)

	//nolint:gosec // G115: test offsets are small
	require.NoError(t, w.PatchUint32(int64(placeholder), uint32(body)))
	require.NoError(t, w.Allocator().ValidateNoOverlaps())
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "double close is safe")

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Len(t, data, 11+100000)
	require.Equal(t, uint32(4), binary.BigEndian.Uint32(data[:4]))
	require.Equal(t, "payload", string(data[4:11]))
	for _, b := range data[11:] {
		require.Zero(t, b)
	}
}

func TestOpenFileWriter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "existing.bin")
	require.NoError(t, os.WriteFile(filename, []byte("0123456789"), 0o644))

	w, err := OpenFileWriter(filename)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), w.EndOfFile())
	assert.Equal(t, filename, w.Path())

	_, err = w.WriteAt([]byte("ab"), 3)
	require.NoError(t, err)
	buf := make([]byte, 5)
	_, err = w.ReadAt(buf, 1)
	require.NoError(t, err)
	require.Equal(t, "12ab5", string(buf))
	require.NoError(t, w.Close())

	_, err = OpenFileWriter(filepath.Join(t.TempDir(), "missing.bin"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileWriter_Closed(t *testing.T) {
	w, err := NewFileWriter(filepath.Join(t.TempDir(), "c.bin"), ModeTruncate)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.Append("x", []byte{1})
	require.ErrorIs(t, err, utils.ErrClosed)
	_, err = w.WriteAt([]byte{1}, 0)
	require.ErrorIs(t, err, utils.ErrClosed)
	_, err = w.ReadAt(make([]byte, 1), 0)
	require.ErrorIs(t, err, utils.ErrClosed)
	require.ErrorIs(t, w.Flush(), utils.ErrClosed)
	require.ErrorIs(t, w.PatchUint32(0, 1), utils.ErrClosed)
}
