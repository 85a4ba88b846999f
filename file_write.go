package calvin

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/scigolib/calvin/internal/core"
	"github.com/scigolib/calvin/internal/utils"
	"github.com/scigolib/calvin/internal/writer"
)

// CreateMode specifies how to create a new Calvin file.
type CreateMode int

const (
	// CreateTruncate creates a new file, overwriting if it exists.
	CreateTruncate CreateMode = iota

	// CreateExclusive creates a new file, failing if it already exists.
	CreateExclusive
)

type createConfig struct {
	mode CreateMode
	now  func() time.Time
}

// CreateOption configures Create and WriteTo.
type CreateOption func(*createConfig)

// WithCreateMode selects truncating (default) or exclusive creation.
func WithCreateMode(mode CreateMode) CreateOption {
	return func(c *createConfig) { c.mode = mode }
}

// WithClock sets the time source used for an empty creation time.
func WithClock(now func() time.Time) CreateOption {
	return func(c *createConfig) { c.now = now }
}

func newCreateConfig(opts []CreateOption) createConfig {
	cfg := createConfig{mode: CreateTruncate, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Writer is a Calvin file whose skeleton has been written: every header is
// in place with correct offsets and every data region is zero filled. Rows
// are then written through DataSet.
type Writer struct {
	fw  *writer.FileWriter
	hdr *core.FileHeader
}

// Create writes the skeleton of hdr to filename, creating parent
// directories. hdr is not modified; the returned Writer holds a copy with
// the assigned offsets and a generated file identifier and creation time
// when those were empty.
//
// Offsets are unknown when their fields are written, so each is written
// as a placeholder and patched once its target has been written:
//   - the first group offset in the file prefix
//   - each group's next group offset
//   - each data set's data and next data set offsets
func Create(filename string, hdr *FileHeader, opts ...CreateOption) (*Writer, error) {
	cfg := newCreateConfig(opts)
	var mode writer.CreateMode
	switch cfg.mode {
	case CreateTruncate:
		mode = writer.ModeTruncate
	case CreateExclusive:
		mode = writer.ModeExclusive
	default:
		return nil, fmt.Errorf("invalid create mode: %d", cfg.mode)
	}

	h := hdr.Clone()
	h.Generic.FillDefaults(cfg.now())
	if err := validateLayout(h); err != nil {
		return nil, err
	}

	fw, err := writer.NewFileWriter(filename, mode)
	if err != nil {
		return nil, utils.WrapError("file create failed", err)
	}
	if err := writeSkeleton(fw, h); err != nil {
		_ = fw.Close()
		return nil, utils.WrapError(fmt.Sprintf("writing %s", filename), err)
	}
	return &Writer{fw: fw, hdr: h}, nil
}

// validateLayout rejects schemas that cannot be written before any I/O.
func validateLayout(h *core.FileHeader) error {
	_, err := core.PlanLayout(h.Clone())
	return err
}

func writeSkeleton(fw *writer.FileWriter, h *core.FileHeader) error {
	e := core.NewEncoder(h.PrefixAndGenericSize())
	h.FirstGroupOffset = 0
	h.EncodePrefix(e)
	h.Generic.Encode(e)
	if _, err := fw.Append("file header", e.Bytes()); err != nil {
		return err
	}

	patchPos := int64(core.FirstGroupOffsetPosition)
	for gi := range h.Groups {
		g := &h.Groups[gi]
		//nolint:gosec // G115: the allocator keeps offsets within u32
		g.Offset = uint32(fw.EndOfFile())
		if err := fw.PatchUint32(patchPos, g.Offset); err != nil {
			return err
		}
		if gi == 0 {
			h.FirstGroupOffset = g.Offset
		} else {
			h.Groups[gi-1].NextOffset = g.Offset
		}

		g.NextOffset = 0
		e.Reset()
		g.Encode(e)
		if _, err := fw.Append("group "+g.Name, e.Bytes()); err != nil {
			return err
		}
		patchPos = g.NextOffsetPosition()

		for di := range g.DataSets {
			if err := writeDataSetSkeleton(fw, e, &g.DataSets[di]); err != nil {
				return fmt.Errorf("data set %q: %w", g.DataSets[di].Name, err)
			}
		}
	}
	return fw.Allocator().ValidateNoOverlaps()
}

func writeDataSetSkeleton(fw *writer.FileWriter, e *core.Encoder, ds *core.DataSetHeader) error {
	ds.DataOffset, ds.NextOffset = 0, 0
	e.Reset()
	ds.Encode(e)
	start, err := fw.Append("data set "+ds.Name, e.Bytes())
	if err != nil {
		return err
	}
	size, err := ds.DataSize()
	if err != nil {
		return err
	}
	data, err := fw.AppendZeros("rows of "+ds.Name, size)
	if err != nil {
		return err
	}
	//nolint:gosec // G115: the allocator keeps offsets within u32
	ds.HeaderOffset, ds.DataOffset, ds.NextOffset = uint32(start), uint32(data), uint32(data+size)
	//nolint:gosec // G115: the allocator keeps offsets within u32
	if err := fw.PatchUint32(int64(start), ds.DataOffset); err != nil {
		return err
	}
	//nolint:gosec // G115: the allocator keeps offsets within u32
	return fw.PatchUint32(int64(start)+4, ds.NextOffset)
}

// Path returns the file name.
func (w *Writer) Path() string { return w.fw.Path() }

// Header returns the written header with its assigned offsets. It must not
// be modified.
func (w *Writer) Header() *FileHeader { return w.hdr }

// DataGroup returns the first data group named name.
func (w *Writer) DataGroup(name string) (*DataGroup, error) {
	g, ok := w.hdr.Group(name)
	if !ok {
		return nil, fmt.Errorf("%w: data group %q", ErrKindNotFound, name)
	}
	return &DataGroup{hdr: g, src: w.fw, dst: w.fw}, nil
}

// DataSet returns a writable data set.
func (w *Writer) DataSet(group, name string) (*DataSet, error) {
	g, err := w.DataGroup(group)
	if err != nil {
		return nil, err
	}
	return g.DataSet(name)
}

// Flush commits written rows to stable storage.
func (w *Writer) Flush() error { return w.fw.Flush() }

// Close flushes and closes the file. It is safe to call Close multiple times.
func (w *Writer) Close() error {
	if err := w.fw.Flush(); err != nil && !errors.Is(err, utils.ErrClosed) {
		_ = w.fw.Close()
		return err
	}
	return w.fw.Close()
}

// WriteTo writes hdr as a complete Calvin stream in one forward pass, for
// sinks that cannot seek. Offsets are computed from the structures' sizes
// before anything is written. rows supplies each data region; nil or a nil
// reader zero-fills it. hdr is not modified.
func WriteTo(w io.Writer, hdr *FileHeader, rows RowSource, opts ...CreateOption) (int64, error) {
	cfg := newCreateConfig(opts)
	h := hdr.Clone()
	h.Generic.FillDefaults(cfg.now())
	return core.WriteStream(w, h, rows)
}
