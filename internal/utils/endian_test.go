package utils

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// mockReaderAt is a mock implementation of ReaderAt for testing.
type mockReaderAt struct {
	data []byte
	err  error
}

func (m *mockReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	if m.err != nil {
		return 0, m.err
	}

	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}

	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestReadFull(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		offset   int64
		expected []byte
		wantErr  error
	}{
		{
			name:     "at zero",
			data:     []byte{0x00, 0x00, 0x01, 0x02},
			expected: []byte{0x00, 0x00, 0x01, 0x02},
		},
		{
			name:     "at offset",
			data:     []byte{0xFF, 0x12, 0x34, 0x56, 0x78},
			offset:   1,
			expected: []byte{0x12, 0x34, 0x56, 0x78},
		},
		{
			name:    "truncated",
			data:    []byte{0x01, 0x02},
			wantErr: ErrFileFormat,
		},
		{
			name:    "past end",
			data:    []byte{0x01, 0x02, 0x03, 0x04},
			offset:  8,
			wantErr: ErrFileFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]byte, 4)
			err := ReadFull(&mockReaderAt{data: tt.data}, got, tt.offset)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestReadFull_PropagatesIOError(t *testing.T) {
	ioErr := errors.New("device gone")
	err := ReadFull(&mockReaderAt{err: ioErr}, make([]byte, 4), 0)
	require.ErrorIs(t, err, ioErr)
	require.NotErrorIs(t, err, ErrFileFormat)
}
