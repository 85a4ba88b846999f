package chp

import (
	"fmt"

	"github.com/scigolib/calvin"
)

type tableKey struct {
	kind  DataType
	group string
}

type table struct {
	kind DataType
	ds   *calvin.DataSet
	dec  *calvin.RowDecoder
}

// File is an open multi-data CHP file.
type File struct {
	f      *calvin.File
	order  []tableKey
	tables map[tableKey]*table
}

// Open opens a multi-data CHP file. Data sets whose group and name match no
// known kind are left out of the kind lookups but remain reachable through
// Container.
func Open(path string) (*File, error) {
	f, err := calvin.Open(path)
	if err != nil {
		return nil, err
	}
	if id := f.FileTypeID(); id != MultiDataFileType {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s has file type %q, expected %q", calvin.ErrFileFormat, path, id, MultiDataFileType)
	}
	out := &File{f: f, tables: make(map[tableKey]*table)}
	var schemaErr error
	f.Walk(func(g *calvin.DataGroup, ds *calvin.DataSet) bool {
		t, ok := kindOf(g.Name(), ds.Name())
		if !ok {
			return true
		}
		if err := checkSchema(t, ds.Columns()); err != nil {
			schemaErr = fmt.Errorf("%s group %q: %w", path, g.Name(), err)
			return false
		}
		key := tableKey{kind: t, group: g.Name()}
		if _, dup := out.tables[key]; dup {
			return true
		}
		out.order = append(out.order, key)
		out.tables[key] = &table{kind: t, ds: ds, dec: calvin.NewRowDecoder(ds.Columns())}
		return true
	})
	if schemaErr != nil {
		_ = f.Close()
		return nil, schemaErr
	}
	return out, nil
}

// Close releases the file.
func (f *File) Close() error { return f.f.Close() }

// Path returns the file name.
func (f *File) Path() string { return f.f.Path() }

// Container returns the underlying generic file.
func (f *File) Container() *calvin.File { return f.f }

// GenericHeader returns the file's generic data header.
func (f *File) GenericHeader() *calvin.GenericDataHeader { return f.f.GenericHeader() }

func (f *File) param(name string) string {
	return f.f.GenericHeader().Params.FindString(name)
}

// AlgName returns the name of the producing algorithm.
func (f *File) AlgName() string { return f.param(AlgorithmNameParam) }

// AlgVersion returns the version of the producing algorithm.
func (f *File) AlgVersion() string { return f.param(AlgorithmVersionParam) }

// ArrayType returns the array type the results describe.
func (f *File) ArrayType() string { return f.param(ArrayTypeParam) }

// AlgParams returns the algorithm parameters without their prefix.
func (f *File) AlgParams() calvin.ParameterList {
	return f.f.GenericHeader().Params.WithPrefix(AlgorithmParamPrefix)
}

// SummaryParams returns the chip summary parameters without their prefix.
func (f *File) SummaryParams() calvin.ParameterList {
	return f.f.GenericHeader().Params.WithPrefix(SummaryParamPrefix)
}

// AlgorithmParameter returns the display string of an algorithm parameter,
// or "" when it is absent.
func (f *File) AlgorithmParameter(name string) string {
	return f.param(AlgorithmParamPrefix + name)
}

// SummaryParameter returns the display string of a chip summary parameter,
// or "" when it is absent.
func (f *File) SummaryParameter(name string) string {
	return f.param(SummaryParamPrefix + name)
}

// DataTypes returns the kinds stored in the file, in file order. A kind
// stored in several groups is listed once.
func (f *File) DataTypes() []DataType {
	seen := make(map[DataType]bool)
	var out []DataType
	for _, k := range f.order {
		if !seen[k.kind] {
			seen[k.kind] = true
			out = append(out, k.kind)
		}
	}
	return out
}

// Groups returns the groups holding a table of kind t.
func (f *File) Groups(t DataType) []string {
	var out []string
	for _, k := range f.order {
		if k.kind == t {
			out = append(out, k.group)
		}
	}
	return out
}

func (f *File) table(t DataType, group string) (*table, error) {
	tb, ok := f.tables[tableKey{kind: t, group: group}]
	if !ok {
		return nil, fmt.Errorf("%w: %s in group %q of %s", calvin.ErrKindNotFound, t, group, f.Path())
	}
	return tb, nil
}

// DataSet returns the data set holding kind t in its default group.
func (f *File) DataSet(t DataType) (*calvin.DataSet, error) {
	tb, err := f.table(t, t.DefaultGroup())
	if err != nil {
		return nil, err
	}
	return tb.ds, nil
}

// EntryCount returns the number of entries of kind t in its default group,
// or 0 when the file has no such table.
func (f *File) EntryCount(t DataType) int { return f.EntryCountInGroup(t, t.DefaultGroup()) }

// EntryCountInGroup is EntryCount for a table stored in group.
func (f *File) EntryCountInGroup(t DataType, group string) int {
	tb, err := f.table(t, group)
	if err != nil {
		return 0
	}
	return tb.ds.Rows()
}

// Entry reads entry row of kind t from its default group.
func (f *File) Entry(t DataType, row int) (Entry, error) {
	return f.EntryInGroup(t, t.DefaultGroup(), row)
}

// EntryInGroup reads entry row of kind t from group.
func (f *File) EntryInGroup(t DataType, group string, row int) (Entry, error) {
	tb, err := f.table(t, group)
	if err != nil {
		return nil, err
	}
	b, err := tb.ds.ReadRowBytes(row)
	if err != nil {
		return nil, err
	}
	return decodeEntry(tb.dec, t, b)
}

// MaxNameLength returns the width of the first text column of kind t, or 0
// when the kind has none or the table is absent.
func (f *File) MaxNameLength(t DataType) int {
	tb, err := f.table(t, t.DefaultGroup())
	if err != nil {
		return 0
	}
	for _, c := range tb.ds.Columns()[:t.NumFixedColumns()] {
		if c.Type == calvin.ColumnASCII || c.Type == calvin.ColumnUnicode {
			return c.MaxLen
		}
	}
	return 0
}

// NumMetricColumns returns the number of metric columns of kind t in its
// default group.
func (f *File) NumMetricColumns(t DataType) int {
	return f.NumMetricColumnsInGroup(t, t.DefaultGroup())
}

// NumMetricColumnsInGroup is NumMetricColumns for a table stored in group.
func (f *File) NumMetricColumnsInGroup(t DataType, group string) int {
	tb, err := f.table(t, group)
	if err != nil {
		return 0
	}
	return tb.ds.NumColumns() - t.NumFixedColumns()
}

// MetricColumn returns metric column i of kind t in its default group.
func (f *File) MetricColumn(t DataType, i int) (calvin.ColumnInfo, error) {
	return f.MetricColumnInGroup(t, t.DefaultGroup(), i)
}

// MetricColumnInGroup is MetricColumn for a table stored in group.
func (f *File) MetricColumnInGroup(t DataType, group string, i int) (calvin.ColumnInfo, error) {
	tb, err := f.table(t, group)
	if err != nil {
		return calvin.ColumnInfo{}, err
	}
	n := tb.ds.NumColumns() - t.NumFixedColumns()
	if i < 0 || i >= n {
		return calvin.ColumnInfo{}, fmt.Errorf("%w: metric column %d of %d", calvin.ErrIndexOutOfRange, i, n)
	}
	return tb.ds.Column(t.NumFixedColumns() + i)
}

func entryAs[T Entry](f *File, t DataType, group string, row int) (T, error) {
	var zero T
	e, err := f.EntryInGroup(t, group, row)
	if err != nil {
		return zero, err
	}
	out, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s entry is %T", calvin.ErrTypeMismatch, t, e)
	}
	return out, nil
}

// Genotype reads a Genotype entry.
func (f *File) Genotype(row int) (*ProbeSetGenotypeEntry, error) {
	return entryAs[*ProbeSetGenotypeEntry](f, Genotype, MultiDataGroup, row)
}

// Expression reads an Expression entry.
func (f *File) Expression(row int) (*ProbeSetExpressionEntry, error) {
	return entryAs[*ProbeSetExpressionEntry](f, Expression, MultiDataGroup, row)
}

// CopyNumber reads a CopyNumber entry.
func (f *File) CopyNumber(row int) (*ProbeSetCopyNumberEntry, error) {
	return entryAs[*ProbeSetCopyNumberEntry](f, CopyNumber, MultiDataGroup, row)
}

// DmetCopyNumber reads a DMET copy number entry.
func (f *File) DmetCopyNumber(row int) (*DmetCopyNumberEntry, error) {
	return entryAs[*DmetCopyNumberEntry](f, DmetCopyNumber, DmetGroup, row)
}

// ChromosomeSummary reads a chromosome summary entry.
func (f *File) ChromosomeSummary(row int) (*ChromosomeSummaryEntry, error) {
	return entryAs[*ChromosomeSummaryEntry](f, ChromosomeSummary, ChromosomeGroup, row)
}

// Segment reads an entry of a segment kind.
func (f *File) Segment(t DataType, row int) (*ChromosomeSegmentEntry, error) {
	return entryAs[*ChromosomeSegmentEntry](f, t, t.DefaultGroup(), row)
}

// SegmentEx reads an entry of a keyed segment kind stored in group.
func (f *File) SegmentEx(t DataType, group string, row int) (*ChromosomeSegmentExEntry, error) {
	return entryAs[*ChromosomeSegmentExEntry](f, t, group, row)
}
