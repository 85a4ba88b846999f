// Package testing provides io fakes for container tests.
package testing

import (
	"errors"
	"io"
)

// ErrDevice is the default error returned by a failing MockReaderAt.
var ErrDevice = errors.New("mock device error")

// MockReaderAt serves a byte slice. Reads touching bytes at or past the
// failure offset fail with the configured error, unlike a truncated file,
// which ends with io.EOF.
type MockReaderAt struct {
	data   []byte
	failAt int64
	err    error
	reads  int
}

// NewMockReaderAt creates a new mock reader with the given data.
func NewMockReaderAt(data []byte) *MockReaderAt {
	return &MockReaderAt{data: data, failAt: -1}
}

// FailAfter makes reads reaching offset fail with err, or ErrDevice when
// err is nil.
func (m *MockReaderAt) FailAfter(offset int64, err error) *MockReaderAt {
	if err == nil {
		err = ErrDevice
	}
	m.failAt, m.err = offset, err
	return m
}

// Reads returns the number of ReadAt calls.
func (m *MockReaderAt) Reads() int { return m.reads }

// ReadAt implements io.ReaderAt.
func (m *MockReaderAt) ReadAt(p []byte, off int64) (n int, err error) {
	m.reads++
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	if m.failAt >= 0 && off+int64(len(p)) > m.failAt {
		n = copy(p, m.data[min(off, m.failAt, int64(len(m.data))):min(m.failAt, int64(len(m.data)))])
		return n, m.err
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		err = io.EOF
	}
	return n, err
}
