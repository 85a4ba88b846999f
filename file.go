package calvin

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/scigolib/calvin/internal/core"
	"github.com/scigolib/calvin/internal/utils"
	"github.com/scigolib/calvin/internal/writer"
)

// gzipMagic starts every gzip member.
var gzipMagic = []byte{0x1f, 0x8b}

// File is an open Calvin file. Files returned by Open are read-only;
// OpenForUpdate returns a file whose data sets accept WriteCell.
type File struct {
	path   string
	r      io.ReaderAt
	size   int64
	closer io.Closer
	fw     *writer.FileWriter // non-nil for update mode
	hdr    *core.FileHeader
}

// Open opens a Calvin file for reading. Gzip-compressed files are detected
// by their magic bytes and decompressed into memory.
func Open(filename string) (*File, error) {
	//nolint:gosec // G304: caller-provided path is intentional for a file library
	f, err := os.Open(filename)
	if err != nil {
		return nil, utils.WrapError("file open failed", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, utils.WrapError("file stat failed", err)
	}

	var head [2]byte
	if _, err := f.ReadAt(head[:], 0); err == nil && bytes.Equal(head[:], gzipMagic) {
		data, err := inflate(f)
		_ = f.Close()
		if err != nil {
			return nil, utils.WrapError("gzip decompression failed", err)
		}
		file, err := OpenReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		file.path = filename
		return file, nil
	}

	file, err := OpenReader(f, fi.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	file.path = filename
	file.closer = f
	return file, nil
}

func inflate(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OpenReader parses a Calvin stream of size bytes from r. The caller keeps
// ownership of r; Close on the returned File does not close it.
func OpenReader(r io.ReaderAt, size int64) (*File, error) {
	hdr, err := core.ReadFileHeader(r)
	if err != nil {
		return nil, utils.WrapError("file header read failed", err)
	}
	if err := checkExtent(hdr, size); err != nil {
		return nil, err
	}
	return &File{r: r, size: size, hdr: hdr}, nil
}

// checkExtent verifies that every data region lies within the stream.
func checkExtent(hdr *core.FileHeader, size int64) error {
	for _, g := range hdr.Groups {
		for _, ds := range g.DataSets {
			if int64(ds.NextOffset) > size {
				return fmt.Errorf("%w: data set %q ends at %d beyond file size %d",
					ErrFileFormat, ds.Name, ds.NextOffset, size)
			}
		}
	}
	return nil
}

// OpenForUpdate opens an existing uncompressed Calvin file for in-place
// cell updates. The schema and row counts cannot change.
func OpenForUpdate(filename string) (*File, error) {
	fw, err := writer.OpenFileWriter(filename)
	if err != nil {
		return nil, utils.WrapError("file open failed", err)
	}
	hdr, err := core.ReadFileHeader(fw)
	if err != nil {
		_ = fw.Close()
		return nil, utils.WrapError("file header read failed", err)
	}
	//nolint:gosec // G115: end of file is bounded by the u32 offset range
	size := int64(fw.EndOfFile())
	if err := checkExtent(hdr, size); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &File{path: filename, r: fw, size: size, closer: fw, fw: fw, hdr: hdr}, nil
}

// Close releases the underlying file. It is safe to call Close multiple times.
func (f *File) Close() error {
	if f.hdr == nil {
		return nil
	}
	f.hdr = nil
	f.r = nil
	f.fw = nil
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

// Path returns the name the file was opened with, or "" for OpenReader.
func (f *File) Path() string { return f.path }

// Size returns the stream size in bytes.
func (f *File) Size() int64 { return f.size }

// Header returns the parsed file header. It must not be modified.
func (f *File) Header() *FileHeader { return f.hdr }

// GenericHeader returns the generic data header.
func (f *File) GenericHeader() *GenericDataHeader { return &f.hdr.Generic }

// FileTypeID returns the file type identifier of the generic data header.
func (f *File) FileTypeID() string { return f.hdr.Generic.FileTypeID }

// Writable reports whether data sets of f accept WriteCell.
func (f *File) Writable() bool { return f.fw != nil }

// NumDataGroups returns the number of data groups.
func (f *File) NumDataGroups() int { return len(f.hdr.Groups) }

// DataGroups returns every data group in file order.
func (f *File) DataGroups() []*DataGroup {
	if f.hdr == nil {
		return nil
	}
	out := make([]*DataGroup, len(f.hdr.Groups))
	for i := range f.hdr.Groups {
		out[i] = f.group(&f.hdr.Groups[i])
	}
	return out
}

func (f *File) group(g *core.DataGroupHeader) *DataGroup {
	var dst io.WriterAt
	if f.fw != nil {
		dst = f.fw
	}
	return &DataGroup{hdr: g, src: f.r, dst: dst}
}

// DataGroupAt returns data group i.
func (f *File) DataGroupAt(i int) (*DataGroup, error) {
	if f.hdr == nil {
		return nil, ErrClosed
	}
	if i < 0 || i >= len(f.hdr.Groups) {
		return nil, utils.RangeError("data group", i, len(f.hdr.Groups))
	}
	return f.group(&f.hdr.Groups[i]), nil
}

// DataGroup returns the first data group named name.
func (f *File) DataGroup(name string) (*DataGroup, error) {
	if f.hdr == nil {
		return nil, ErrClosed
	}
	g, ok := f.hdr.Group(name)
	if !ok {
		return nil, fmt.Errorf("%w: data group %q", ErrKindNotFound, name)
	}
	return f.group(g), nil
}

// DataSet returns data set name of data group group.
func (f *File) DataSet(group, name string) (*DataSet, error) {
	g, err := f.DataGroup(group)
	if err != nil {
		return nil, err
	}
	return g.DataSet(name)
}

// Walk calls fn for every data set in file order. Walk stops early when
// fn returns false.
func (f *File) Walk(fn func(group *DataGroup, ds *DataSet) bool) {
	for _, g := range f.DataGroups() {
		for _, ds := range g.DataSets() {
			if !fn(g, ds) {
				return
			}
		}
	}
}

// WriteTo writes a copy of the file, rows included, as an uncompressed
// Calvin stream. It implements io.WriterTo.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	if f.hdr == nil {
		return 0, ErrClosed
	}
	hdr := f.hdr.Clone()
	src := f.hdr
	return core.WriteStream(w, hdr, func(g, d int) io.Reader {
		ds := &src.Groups[g].DataSets[d]
		size, _ := ds.DataSize()
		//nolint:gosec // G115: sizes fit the u32 offset range
		return io.NewSectionReader(f.r, int64(ds.DataOffset), int64(size))
	})
}

// IsCalvin reports whether r starts with the Calvin magic and version.
func IsCalvin(r io.ReaderAt) bool {
	var b [2]byte
	if _, err := r.ReadAt(b[:], 0); err != nil {
		return false
	}
	return b[0] == core.Magic && int8(b[1]) == core.Version
}
