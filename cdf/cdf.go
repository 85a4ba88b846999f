// Package cdf reads and writes Calvin CDF files, which describe the probe
// layout of an array type. Each probe set is stored as a data group named
// after it, holding one probe table.
package cdf

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/scigolib/calvin"
)

// FileType identifies Calvin CDF files.
const FileType = "affymetrix-calvin-cdf"

// Layout names.
const (
	ProbeTable = "Probes"

	XCol           = "X"
	YCol           = "Y"
	PBaseCol       = "PBase"
	TBaseCol       = "TBase"
	ProbeLengthCol = "ProbeLength"
	ProbeGroupCol  = "ProbeGroup"
)

// Parameter names.
const (
	ArrayTypeParam = "affymetrix-array-type"
	RowsParam      = "affymetrix-cdf-rows"
	ColsParam      = "affymetrix-cdf-cols"
	TypeParam      = "affymetrix-probeset-type"
	DirectionParam = "affymetrix-probeset-direction"
	NumberParam    = "affymetrix-probeset-number"
	GroupsParam    = "affymetrix-probeset-groups"
)

// ProbeSetType is the kind of measurement a probe set makes.
type ProbeSetType uint8

// Probe set types.
const (
	UnknownProbeSet ProbeSetType = iota
	ExpressionProbeSet
	GenotypingProbeSet
	ResequencingProbeSet
	TagProbeSet
	CopyNumberProbeSet
	GenotypeControlProbeSet
	ExpressionControlProbeSet
)

// Direction is the strand a probe set targets.
type Direction uint8

// Directions.
const (
	NoDirection Direction = iota
	SenseDirection
	AntiSenseDirection
	EitherDirection
)

// Probe is one feature of a probe set.
type Probe struct {
	X, Y        uint16
	PBase       byte // probe base at the interrogation position
	TBase       byte // target base
	ProbeLength uint16
	ProbeGroup  uint16 // block or allele group within the probe set
}

// ProbeSet is a named group of probes.
type ProbeSet struct {
	Name      string
	Type      ProbeSetType
	Direction Direction
	Number    int
	Probes    []Probe
}

// NumGroups returns the number of distinct probe groups, assuming groups
// are numbered from zero.
func (ps *ProbeSet) NumGroups() int {
	n := 0
	for _, p := range ps.Probes {
		n = max(n, int(p.ProbeGroup)+1)
	}
	return n
}

// Data is a CDF file held in memory.
type Data struct {
	FileID    string // generated when empty
	Locale    string
	ArrayType string
	Rows      int
	Cols      int
	ProbeSets []ProbeSet
}

var probeColumns = []calvin.ColumnInfo{
	calvin.UShortColumn(XCol),
	calvin.UShortColumn(YCol),
	calvin.UByteColumn(PBaseCol),
	calvin.UByteColumn(TBaseCol),
	calvin.UShortColumn(ProbeLengthCol),
	calvin.UShortColumn(ProbeGroupCol),
}

// Header builds the container header for d.
func (d *Data) Header() (*calvin.FileHeader, error) {
	h := calvin.NewFileHeader(FileType)
	h.Generic.FileID = d.FileID
	h.Generic.Locale = d.Locale
	if d.ArrayType != "" {
		h.Generic.Params.Add(ArrayTypeParam, calvin.TextValue(d.ArrayType))
	}
	//nolint:gosec // G115: array dimensions fit in i32
	h.Generic.Params.Add(RowsParam, calvin.Int32Value(int32(d.Rows)))
	//nolint:gosec // G115: array dimensions fit in i32
	h.Generic.Params.Add(ColsParam, calvin.Int32Value(int32(d.Cols)))

	seen := make(map[string]bool, len(d.ProbeSets))
	for i := range d.ProbeSets {
		ps := &d.ProbeSets[i]
		if ps.Name == "" || seen[ps.Name] {
			return nil, fmt.Errorf("probe set %d: empty or duplicate name %q", i, ps.Name)
		}
		seen[ps.Name] = true
		ds := calvin.DataSetHeader{Name: ProbeTable, RowCount: len(ps.Probes), Columns: slices.Clone(probeColumns)}
		ds.Params.Add(TypeParam, calvin.UInt8Value(uint8(ps.Type)))
		ds.Params.Add(DirectionParam, calvin.UInt8Value(uint8(ps.Direction)))
		//nolint:gosec // G115: probe set numbers fit in i32
		ds.Params.Add(NumberParam, calvin.Int32Value(int32(ps.Number)))
		//nolint:gosec // G115: probe group count fits in i32
		ds.Params.Add(GroupsParam, calvin.Int32Value(int32(ps.NumGroups())))
		h.AddGroup(ps.Name).AddDataSet(ds)
	}
	return h, nil
}

// Write stores d at path.
func Write(path string, d *Data, opts ...calvin.CreateOption) error {
	hdr, err := d.Header()
	if err != nil {
		return err
	}
	w, err := calvin.Create(path, hdr, opts...)
	if err != nil {
		return err
	}
	enc := calvin.NewRowEncoder(probeColumns)
	var buf bytes.Buffer
	for i := range d.ProbeSets {
		ps := &d.ProbeSets[i]
		buf.Reset()
		for _, p := range ps.Probes {
			if err := encodeProbe(enc, p); err != nil {
				_ = w.Close()
				return err
			}
			buf.Write(enc.Bytes())
		}
		ds, err := w.DataSet(ps.Name, ProbeTable)
		if err != nil {
			_ = w.Close()
			return err
		}
		if err := ds.WriteRows(0, buf.Bytes()); err != nil {
			_ = w.Close()
			return fmt.Errorf("probe set %q: %w", ps.Name, err)
		}
	}
	return w.Close()
}

func encodeProbe(enc *calvin.RowEncoder, p Probe) error {
	for _, err := range []error{
		enc.PutUInt16(0, p.X),
		enc.PutUInt16(1, p.Y),
		enc.PutUInt8(2, p.PBase),
		enc.PutUInt8(3, p.TBase),
		enc.PutUInt16(4, p.ProbeLength),
		enc.PutUInt16(5, p.ProbeGroup),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
