package chp

import (
	"fmt"

	"github.com/scigolib/calvin"
)

// MultiDataFileType identifies multi-data CHP files.
const MultiDataFileType = "affymetrix-multi-data-type-analysis"

// Generic header parameter names.
const (
	AlgorithmNameParam    = "affymetrix-algorithm-name"
	AlgorithmVersionParam = "affymetrix-algorithm-version"
	ArrayTypeParam        = "affymetrix-array-type"

	// AlgorithmParamPrefix and SummaryParamPrefix are prepended to the names
	// of algorithm and chip summary parameters.
	AlgorithmParamPrefix = "affymetrix-algorithm-param-"
	SummaryParamPrefix   = "affymetrix-chipsummary-"
)

// DataSetSpec declares one result table of a file.
type DataSetSpec struct {
	Kind DataType

	// Group overrides the kind's default group. Only keyed segment kinds
	// take a group of their own, declared once per group; it must not be
	// the default group of another kind.
	Group string

	Rows int

	// MaxNameLength is the width of the kind's text columns. It is required
	// for kinds with name columns and ignored otherwise.
	MaxNameLength int

	// Metrics are appended after the fixed columns.
	Metrics []calvin.ColumnInfo

	Params calvin.ParameterList
}

// GroupName returns the group the data set is stored in.
func (s DataSetSpec) GroupName() string {
	if s.Group != "" {
		return s.Group
	}
	return s.Kind.DefaultGroup()
}

// Columns returns the full column schema of the data set.
func (s DataSetSpec) Columns() []calvin.ColumnInfo {
	return s.Kind.Columns(max(s.MaxNameLength, 1), s.Metrics)
}

func (s DataSetSpec) validate() error {
	switch {
	case !s.Kind.Valid():
		return fmt.Errorf("invalid data type %d", int(s.Kind))
	case s.Rows < 0:
		return fmt.Errorf("%s: negative row count %d", s.Kind, s.Rows)
	case s.Kind.HasNameColumns() && s.MaxNameLength < 1:
		return fmt.Errorf("%s: max name length is required", s.Kind)
	case len(s.Metrics) > 0 && !s.Kind.SupportsMetrics():
		return fmt.Errorf("%s does not take metric columns", s.Kind)
	case s.Group != "" && s.Group != s.Kind.DefaultGroup() && !s.Kind.IsSegmentEx():
		return fmt.Errorf("%s is always stored in group %q, not %q", s.Kind, s.Kind.DefaultGroup(), s.Group)
	case s.Kind.IsSegmentEx() && isFixedGroup(s.Group):
		return fmt.Errorf("%s: group %q is reserved for other kinds", s.Kind, s.Group)
	}
	for _, c := range s.Metrics {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%s metric %q: %w", s.Kind, c.Name, err)
		}
	}
	return nil
}

// FileSpec describes a multi-data CHP file to create.
type FileSpec struct {
	Path   string
	FileID string // generated when empty
	Locale string

	AlgorithmName    string
	AlgorithmVersion string
	ArrayType        string

	// AlgParams and SummaryParams are stored in the generic header with
	// their prefixes added.
	AlgParams     calvin.ParameterList
	SummaryParams calvin.ParameterList

	Parents  []calvin.GenericDataHeader
	DataSets []DataSetSpec
}

// AddAlgParam appends an algorithm parameter.
func (s *FileSpec) AddAlgParam(name string, v calvin.ParameterValue) {
	s.AlgParams.Add(name, v)
}

// AddAlgParams appends algorithm parameters in order.
func (s *FileSpec) AddAlgParams(params ...calvin.NameValue) {
	for _, p := range params {
		s.AlgParams.Add(p.Name, p.Value)
	}
}

// AddSummaryParam appends a chip summary parameter.
func (s *FileSpec) AddSummaryParam(name string, v calvin.ParameterValue) {
	s.SummaryParams.Add(name, v)
}

// AddSummaryParams appends chip summary parameters in order.
func (s *FileSpec) AddSummaryParams(params ...calvin.NameValue) {
	for _, p := range params {
		s.SummaryParams.Add(p.Name, p.Value)
	}
}

// AddParent records the header of a file the results were derived from.
func (s *FileSpec) AddParent(h calvin.GenericDataHeader) {
	s.Parents = append(s.Parents, h.Clone())
}

// AddDataSet declares a result table.
func (s *FileSpec) AddDataSet(ds DataSetSpec) {
	s.DataSets = append(s.DataSets, ds)
}

// Header builds the container header. Groups are laid out in order of
// their first data set.
func (s *FileSpec) Header() (*calvin.FileHeader, error) {
	h := calvin.NewFileHeader(MultiDataFileType)
	h.Generic.FileID = s.FileID
	h.Generic.Locale = s.Locale
	for _, p := range s.Parents {
		h.Generic.AddParent(p)
	}

	params := &h.Generic.Params
	if s.AlgorithmName != "" {
		params.Add(AlgorithmNameParam, calvin.TextValue(s.AlgorithmName))
	}
	if s.AlgorithmVersion != "" {
		params.Add(AlgorithmVersionParam, calvin.TextValue(s.AlgorithmVersion))
	}
	if s.ArrayType != "" {
		params.Add(ArrayTypeParam, calvin.TextValue(s.ArrayType))
	}
	for name, v := range s.AlgParams.All() {
		params.Add(AlgorithmParamPrefix+name, v)
	}
	for name, v := range s.SummaryParams.All() {
		params.Add(SummaryParamPrefix+name, v)
	}

	for _, ds := range s.DataSets {
		if err := ds.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path, err)
		}
		group := ds.GroupName()
		g, ok := h.Group(group)
		if !ok {
			g = h.AddGroup(group)
		}
		if _, dup := g.DataSet(ds.Kind.DataSetName()); dup {
			return nil, fmt.Errorf("%s: %s declared twice in group %q", s.Path, ds.Kind, group)
		}
		g.AddDataSet(calvin.DataSetHeader{
			Name:     ds.Kind.DataSetName(),
			Params:   ds.Params.Clone(),
			Columns:  ds.Columns(),
			RowCount: ds.Rows,
		})
	}
	return h, nil
}
