package core

import (
	"fmt"
	"io"

	"github.com/scigolib/calvin/internal/utils"
)

// Calvin container identification.
const (
	Magic   uint8 = 59
	Version int8  = 1
)

// FirstGroupOffsetPosition is where the first-group offset lives in the prefix.
const FirstGroupOffsetPosition = 6

// prefixSize covers magic, version, group count and first group offset.
const prefixSize = 1 + 1 + 4 + 4

// FileHeader is the root of a Calvin file: the generic data header and the
// ordered data groups.
type FileHeader struct {
	Version          int8
	Generic          GenericDataHeader
	Groups           []DataGroupHeader
	FirstGroupOffset uint32
}

// NewFileHeader returns a header for the current format version.
func NewFileHeader(fileTypeID string) *FileHeader {
	return &FileHeader{
		Version: Version,
		Generic: GenericDataHeader{FileTypeID: fileTypeID},
	}
}

// AddGroup appends a data group and returns a pointer to the stored copy.
// The pointer is invalidated by the next AddGroup.
func (f *FileHeader) AddGroup(name string) *DataGroupHeader {
	f.Groups = append(f.Groups, DataGroupHeader{Name: name})
	return &f.Groups[len(f.Groups)-1]
}

// Group returns the first group named name.
func (f *FileHeader) Group(name string) (*DataGroupHeader, bool) {
	for i := range f.Groups {
		if f.Groups[i].Name == name {
			return &f.Groups[i], true
		}
	}
	return nil, false
}

// DataSet returns the data set name within group.
func (f *FileHeader) DataSet(group, name string) (*DataSetHeader, bool) {
	g, ok := f.Group(group)
	if !ok {
		return nil, false
	}
	return g.DataSet(name)
}

// Clone returns a deep copy.
func (f *FileHeader) Clone() *FileHeader {
	out := *f
	out.Generic = f.Generic.Clone()
	out.Groups = make([]DataGroupHeader, len(f.Groups))
	for i, g := range f.Groups {
		g.DataSets = append([]DataSetHeader(nil), g.DataSets...)
		for j := range g.DataSets {
			ds := &g.DataSets[j]
			ds.Params = ds.Params.Clone()
			ds.Columns = append([]ColumnInfo(nil), ds.Columns...)
		}
		out.Groups[i] = g
	}
	return &out
}

// PrefixAndGenericSize is the size of everything before the first group.
func (f *FileHeader) PrefixAndGenericSize() int {
	return prefixSize + f.Generic.EncodedSize()
}

// EncodePrefix appends magic, version, group count and first group offset.
func (f *FileHeader) EncodePrefix(e *Encoder) {
	e.PutUint8(Magic)
	e.PutInt8(f.Version)
	//nolint:gosec // G115: group counts are bounded by MaxListCount
	e.PutUint32(uint32(len(f.Groups)))
	e.PutUint32(f.FirstGroupOffset)
}

// Layout is the result of planning: the total file size.
type Layout struct {
	Size uint64
}

// PlanLayout assigns every offset of f without performing I/O, using only
// the structures' own EncodedSize. Writers that cannot seek back use it to
// emit correct offsets in a single forward pass.
func PlanLayout(f *FileHeader) (Layout, error) {
	pos := uint64(f.PrefixAndGenericSize())
	//nolint:gosec // G115: checked by CheckOffset below
	f.FirstGroupOffset = uint32(pos)
	for gi := range f.Groups {
		g := &f.Groups[gi]
		if err := utils.CheckOffset(pos); err != nil {
			return Layout{}, fmt.Errorf("group %q: %w", g.Name, err)
		}
		//nolint:gosec // G115: checked above
		g.Offset = uint32(pos)
		pos += uint64(g.EncodedSize())
		for di := range g.DataSets {
			ds := &g.DataSets[di]
			if err := ds.Validate(); err != nil {
				return Layout{}, err
			}
			size, _ := ds.DataSize()
			//nolint:gosec // G115: checked by CheckOffset below
			ds.HeaderOffset = uint32(pos)
			pos += uint64(ds.EncodedSize())
			//nolint:gosec // G115: checked by CheckOffset below
			ds.DataOffset = uint32(pos)
			pos += size
			if err := utils.CheckOffset(pos); err != nil {
				return Layout{}, fmt.Errorf("data set %q: %w", ds.Name, err)
			}
			//nolint:gosec // G115: checked above
			ds.NextOffset = uint32(pos)
		}
		g.NextOffset = 0
		if gi+1 < len(f.Groups) {
			//nolint:gosec // G115: checked above
			g.NextOffset = uint32(pos)
		}
	}
	if err := utils.CheckOffset(pos); err != nil {
		return Layout{}, err
	}
	return Layout{Size: pos}, nil
}

// ReadFileHeader parses the prefix, the generic header and every group and
// data set header of a Calvin stream. Packed rows are skipped via offsets.
func ReadFileHeader(r io.ReaderAt) (*FileHeader, error) {
	d := NewDecoder(r, 0)
	magic, err := d.Uint8()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic %d, expected %d", utils.ErrInvalidVersion, magic, Magic)
	}
	f := &FileHeader{}
	if f.Version, err = d.Int8(); err != nil {
		return nil, err
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%w: version %d, expected %d", utils.ErrInvalidVersion, f.Version, Version)
	}
	groups, err := d.Count("data group")
	if err != nil {
		return nil, err
	}
	if f.FirstGroupOffset, err = d.Uint32(); err != nil {
		return nil, err
	}
	if f.Generic, err = DecodeGenericDataHeader(d); err != nil {
		return nil, utils.WrapError("generic data header", err)
	}

	next := int64(f.FirstGroupOffset)
	for i := range groups {
		if next == 0 {
			return nil, utils.FormatError("group %d of %d has no offset", i, groups)
		}
		d.SeekTo(next)
		g, err := DecodeDataGroupHeader(d)
		if err != nil {
			return nil, utils.WrapError(fmt.Sprintf("data group %d", i), err)
		}
		f.Groups = append(f.Groups, g)
		next = int64(g.NextOffset)
	}
	return f, nil
}

func errTooDeep(off int64) error {
	return utils.FormatError("parent header nesting deeper than %d at offset %d", maxParentDepth, off)
}
