package writer

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/scigolib/calvin/internal/core"
	"github.com/scigolib/calvin/internal/utils"
)

// FileWriter wraps an os.File for writing Calvin files.
// It provides:
//   - Sequential appends through the Allocator
//   - Placeholder reservation and later back-patching of u32 offsets
//   - Random-access WriteAt for updating packed rows in place
//
// Thread-safety: Not thread-safe. Caller must synchronize access.
type FileWriter struct {
	file      *os.File
	path      string
	allocator *Allocator
}

// CreateMode specifies the file creation behavior.
type CreateMode int

const (
	// ModeTruncate creates a new file, truncating if it exists.
	ModeTruncate CreateMode = iota

	// ModeExclusive creates a new file, fails if it exists.
	ModeExclusive
)

// NewFileWriter creates a file for writing, creating parent directories.
// Appends start at offset 0.
func NewFileWriter(filename string, mode CreateMode) (*FileWriter, error) {
	flags := os.O_RDWR | os.O_CREATE
	switch mode {
	case ModeTruncate:
		flags |= os.O_TRUNC
	case ModeExclusive:
		flags |= os.O_EXCL
	default:
		return nil, fmt.Errorf("invalid create mode: %d", mode)
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	//nolint:gosec // G304: caller-provided path is intentional for a file library
	osFile, err := os.OpenFile(filename, flags, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &FileWriter{
		file:      osFile,
		path:      filename,
		allocator: NewAllocator(0),
	}, nil
}

// OpenFileWriter opens an existing file for in-place updates.
// The allocator starts at the current end of file.
func OpenFileWriter(filename string) (*FileWriter, error) {
	//nolint:gosec // G304: caller-provided path is intentional for a file library
	osFile, err := os.OpenFile(filename, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for update: %w", err)
	}
	fi, err := osFile.Stat()
	if err != nil {
		_ = osFile.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &FileWriter{
		file:      osFile,
		path:      filename,
		//nolint:gosec // G115: file sizes are non-negative
		allocator: NewAllocator(uint64(fi.Size())),
	}, nil
}

// Path returns the file name the writer was opened with.
func (w *FileWriter) Path() string { return w.path }

// Append allocates len(data) bytes at the end of the file, labels the
// region and writes data there. It returns the region's offset.
func (w *FileWriter) Append(label string, data []byte) (uint64, error) {
	if w.file == nil {
		return 0, utils.ErrClosed
	}
	addr, err := w.allocator.Allocate(label, uint64(len(data)))
	if err != nil {
		return 0, err
	}
	if err := w.WriteAtAddress(data, addr); err != nil {
		return 0, err
	}
	return addr, nil
}

// AppendZeros allocates size bytes and fills them with zeros.
func (w *FileWriter) AppendZeros(label string, size uint64) (uint64, error) {
	if w.file == nil {
		return 0, utils.ErrClosed
	}
	addr, err := w.allocator.Allocate(label, size)
	if err != nil {
		return 0, err
	}
	//nolint:gosec // G115: addresses are bounded by the u32 offset range
	sw := io.NewOffsetWriter(w.file, int64(addr))
	if err := core.WriteZeros(sw, size); err != nil {
		return 0, fmt.Errorf("zero fill at address %d failed: %w", addr, err)
	}
	return addr, nil
}

// PatchUint32 overwrites the big-endian u32 at pos. Used to back-patch
// offsets whose value was unknown when the placeholder was appended.
func (w *FileWriter) PatchUint32(pos int64, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.WriteAt(b[:], pos)
	return err
}

// WriteAt writes data at a specific offset in the file.
// Implements io.WriterAt interface.
func (w *FileWriter) WriteAt(data []byte, offset int64) (int, error) {
	if w.file == nil {
		return 0, utils.ErrClosed
	}

	if len(data) == 0 {
		return 0, nil
	}

	n, err := w.file.WriteAt(data, offset)
	if err != nil {
		return n, fmt.Errorf("write at address %d failed: %w", offset, err)
	}

	if n != len(data) {
		return n, fmt.Errorf("incomplete write at address %d: wrote %d of %d bytes", offset, n, len(data))
	}

	return n, nil
}

// WriteAtAddress writes data at a specific address (convenience method with uint64 address).
func (w *FileWriter) WriteAtAddress(data []byte, addr uint64) error {
	//nolint:gosec // G115: addresses are bounded by the u32 offset range
	_, err := w.WriteAt(data, int64(addr))
	return err
}

// ReadAt reads data at a specific address.
// Implements io.ReaderAt interface for compatibility.
func (w *FileWriter) ReadAt(buf []byte, addr int64) (int, error) {
	if w.file == nil {
		return 0, utils.ErrClosed
	}

	return w.file.ReadAt(buf, addr)
}

// EndOfFile returns the current end-of-file address.
func (w *FileWriter) EndOfFile() uint64 {
	return w.allocator.EndOfFile()
}

// Flush ensures all writes are committed to disk.
func (w *FileWriter) Flush() error {
	if w.file == nil {
		return utils.ErrClosed
	}

	return w.file.Sync()
}

// Close closes the underlying file.
// This does NOT automatically flush - call Flush() first if needed.
// It is safe to call Close multiple times.
func (w *FileWriter) Close() error {
	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil
	return err
}

// Allocator returns the space allocator.
// Useful for debugging and testing allocation patterns.
func (w *FileWriter) Allocator() *Allocator {
	return w.allocator
}

// Ensure FileWriter implements io.ReaderAt and io.WriterAt
var (
	_ io.ReaderAt = (*FileWriter)(nil)
	_ io.WriterAt = (*FileWriter)(nil)
)
