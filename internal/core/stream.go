package core

import (
	"fmt"
	"io"

	"github.com/scigolib/calvin/internal/utils"
)

// RowSource supplies the packed rows of data set ds in group g. A nil reader
// means the region is zero filled. Exactly DataSize bytes are consumed.
type RowSource func(g, ds int) io.Reader

// WriteStream plans f and writes the complete file to w in one forward
// pass, returning the number of bytes written. It needs no seeking, so w
// may be a pipe or a compressor.
func WriteStream(w io.Writer, f *FileHeader, rows RowSource) (int64, error) {
	layout, err := PlanLayout(f)
	if err != nil {
		return 0, err
	}
	cw := &countingWriter{w: w}
	e := NewEncoder(f.PrefixAndGenericSize())
	f.EncodePrefix(e)
	f.Generic.Encode(e)
	if _, err := cw.Write(e.Bytes()); err != nil {
		return cw.n, err
	}
	for gi := range f.Groups {
		g := &f.Groups[gi]
		e.Reset()
		g.Encode(e)
		if _, err := cw.Write(e.Bytes()); err != nil {
			return cw.n, err
		}
		for di := range g.DataSets {
			ds := &g.DataSets[di]
			e.Reset()
			ds.Encode(e)
			if _, err := cw.Write(e.Bytes()); err != nil {
				return cw.n, err
			}
			size, _ := ds.DataSize()
			var src io.Reader
			if rows != nil {
				src = rows(gi, di)
			}
			if err := copyRegion(cw, src, size); err != nil {
				return cw.n, fmt.Errorf("data set %q: %w", ds.Name, err)
			}
		}
	}
	//nolint:gosec // G115: layout sizes fit in u32
	if uint64(cw.n) != layout.Size {
		return cw.n, fmt.Errorf("wrote %d bytes, layout planned %d", cw.n, layout.Size)
	}
	return cw.n, nil
}

// copyRegion writes size bytes from src, or zeros when src is nil.
func copyRegion(w io.Writer, src io.Reader, size uint64) error {
	if src == nil {
		return WriteZeros(w, size)
	}
	//nolint:gosec // G115: region sizes fit in u32
	n, err := io.CopyN(w, src, int64(size))
	if err != nil {
		return fmt.Errorf("row source supplied %d of %d bytes: %w", n, size, err)
	}
	return nil
}

// WriteZeros writes size zero bytes in pooled chunks.
func WriteZeros(w io.Writer, size uint64) error {
	const chunk = 64 * 1024
	buf := utils.GetZeroBuffer(int(min(size, chunk)))
	defer utils.ReleaseBuffer(buf)
	for size > 0 {
		n := min(size, uint64(len(buf)))
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		size -= n
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
