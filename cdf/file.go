package cdf

import (
	"fmt"

	"github.com/scigolib/calvin"
)

// File is an open Calvin CDF file.
type File struct {
	f          *calvin.File
	rows, cols int
	index      map[string]int
}

// Open opens a Calvin CDF file.
func Open(path string) (*File, error) {
	f, err := calvin.Open(path)
	if err != nil {
		return nil, err
	}
	if id := f.FileTypeID(); id != FileType {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s has file type %q, expected %q", calvin.ErrFileFormat, path, id, FileType)
	}
	params := f.GenericHeader().Params
	out := &File{f: f, index: make(map[string]int, f.NumDataGroups())}
	if v, ok := params.Find(RowsParam); ok {
		n, _ := v.Int32()
		out.rows = int(n)
	}
	if v, ok := params.Find(ColsParam); ok {
		n, _ := v.Int32()
		out.cols = int(n)
	}
	for i, g := range f.DataGroups() {
		out.index[g.Name()] = i
	}
	return out, nil
}

// Close releases the file.
func (f *File) Close() error { return f.f.Close() }

// Rows returns the number of feature rows of the array.
func (f *File) Rows() int { return f.rows }

// Cols returns the number of feature columns of the array.
func (f *File) Cols() int { return f.cols }

// ArrayType returns the array type, or "".
func (f *File) ArrayType() string {
	return f.f.GenericHeader().Params.FindString(ArrayTypeParam)
}

// NumProbeSets returns the number of probe sets.
func (f *File) NumProbeSets() int { return f.f.NumDataGroups() }

// ProbeSetNames returns the probe set names in file order.
func (f *File) ProbeSetNames() []string {
	groups := f.f.DataGroups()
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name()
	}
	return out
}

// ProbeSetByName reads the probe set called name.
func (f *File) ProbeSetByName(name string) (ProbeSet, error) {
	i, ok := f.index[name]
	if !ok {
		return ProbeSet{}, fmt.Errorf("%w: probe set %q", calvin.ErrKindNotFound, name)
	}
	return f.ProbeSet(i)
}

// ProbeSet reads probe set i.
func (f *File) ProbeSet(i int) (ProbeSet, error) {
	g, err := f.f.DataGroupAt(i)
	if err != nil {
		return ProbeSet{}, err
	}
	ds, err := g.DataSet(ProbeTable)
	if err != nil {
		return ProbeSet{}, err
	}
	ps := ProbeSet{Name: g.Name()}
	params := ds.Params()
	if v, ok := params.Find(TypeParam); ok {
		t, err := v.UInt8()
		if err != nil {
			return ProbeSet{}, fmt.Errorf("probe set %q: %w", ps.Name, err)
		}
		ps.Type = ProbeSetType(t)
	}
	if v, ok := params.Find(DirectionParam); ok {
		d, err := v.UInt8()
		if err != nil {
			return ProbeSet{}, fmt.Errorf("probe set %q: %w", ps.Name, err)
		}
		ps.Direction = Direction(d)
	}
	if v, ok := params.Find(NumberParam); ok {
		n, err := v.Int32()
		if err != nil {
			return ProbeSet{}, fmt.Errorf("probe set %q: %w", ps.Name, err)
		}
		ps.Number = int(n)
	}

	dec := calvin.NewRowDecoder(ds.Columns())
	ps.Probes = make([]Probe, ds.Rows())
	for r := range ps.Probes {
		b, err := ds.ReadRowBytes(r)
		if err != nil {
			return ProbeSet{}, err
		}
		if err := dec.SetRow(b); err != nil {
			return ProbeSet{}, err
		}
		if ps.Probes[r], err = decodeProbe(dec); err != nil {
			return ProbeSet{}, fmt.Errorf("probe set %q probe %d: %w", ps.Name, r, err)
		}
	}
	return ps, nil
}

func decodeProbe(dec *calvin.RowDecoder) (Probe, error) {
	var p Probe
	var errs [6]error
	p.X, errs[0] = dec.UInt16(0)
	p.Y, errs[1] = dec.UInt16(1)
	p.PBase, errs[2] = dec.UInt8(2)
	p.TBase, errs[3] = dec.UInt8(3)
	p.ProbeLength, errs[4] = dec.UInt16(4)
	p.ProbeGroup, errs[5] = dec.UInt16(5)
	for _, err := range errs {
		if err != nil {
			return Probe{}, err
		}
	}
	return p, nil
}

// Data loads the whole file into memory.
func (f *File) Data() (*Data, error) {
	gh := f.f.GenericHeader()
	d := &Data{
		FileID:    gh.FileID,
		Locale:    gh.Locale,
		ArrayType: f.ArrayType(),
		Rows:      f.rows,
		Cols:      f.cols,
		ProbeSets: make([]ProbeSet, f.NumProbeSets()),
	}
	for i := range d.ProbeSets {
		ps, err := f.ProbeSet(i)
		if err != nil {
			return nil, err
		}
		d.ProbeSets[i] = ps
	}
	return d, nil
}
