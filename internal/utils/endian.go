package utils

import (
	"errors"
	"io"
)

// ReaderAt is a simplified interface for io.ReaderAt.
type ReaderAt interface {
	ReadAt(p []byte, off int64) (n int, err error)
}

// ReadFull fills p from offset, mapping io.EOF and io.ErrUnexpectedEOF to ErrFileFormat.
func ReadFull(r ReaderAt, p []byte, offset int64) error {
	n, err := r.ReadAt(p, offset)
	if n == len(p) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return FormatError("truncated stream: wanted %d bytes at offset %d, got %d", len(p), offset, n)
	}
	return err
}
