// Package chp maps multi-data CHP result tables onto Calvin data sets.
//
// A multi-data CHP file holds one data set per kind of per-probe-set
// result (genotype calls, expression signals, copy number, DMET calls,
// chromosome summaries and segments, familial analyses). Each kind has a
// fixed leading column schema followed by zero or more metric columns
// chosen by the producing algorithm.
package chp

import (
	"fmt"

	"github.com/scigolib/calvin"
)

// DataType identifies a kind of result table.
type DataType int

// Result kinds.
const (
	Genotype DataType = iota
	Expression
	CopyNumber
	Cyto
	CopyNumberVariation
	DmetBiAllelic
	DmetMultiAllelic
	DmetCopyNumber
	ChromosomeSummary
	AllelePeaks
	MarkerABSignals
	CytoGenotypeCall
	FamilialSamples
	FamilialSegmentOverlaps

	// Chromosome segments.
	SegmentCN
	SegmentLOH
	SegmentCNNeutralLOH
	SegmentNormalDiploid
	SegmentNoCall
	SegmentMosaicism
	SegmentGenotypeConcordance
	SegmentGenotypeDiscordance

	// Chromosome segments with reference and familial sample keys. Their
	// group is chosen by the writer, so one file may carry several streams.
	SegmentCNReference
	SegmentLOHReference
	SegmentCNFamilial
	SegmentLOHFamilial
	SegmentDenovoCopyNumber
	SegmentHemizygousParentOfOrigin
	SegmentUniparentalDisomy
	SegmentMosaicismFamilial

	numDataTypes
)

// Default group names.
const (
	MultiDataGroup  = "MultiData"
	DmetGroup       = "Dmet"
	ChromosomeGroup = "Chromosome"
	SegmentGroup    = "Segments"
	SegmentExGroup  = "FamilialSegments"
	FamilialGroup   = "Familial"
)

type schema int

const (
	schemaGenotype schema = iota
	schemaExpression
	schemaCopyNumber
	schemaCyto
	schemaCNV
	schemaDmetBiAllelic
	schemaDmetMultiAllelic
	schemaDmetCopyNumber
	schemaChromosomeSummary
	schemaAllelePeaks
	schemaMarkerABSignals
	schemaCytoGenotypeCall
	schemaFamilialSamples
	schemaFamilialOverlaps
	schemaSegment
	schemaSegmentEx
)

type kindInfo struct {
	name   string
	group  string
	schema schema
}

var kinds = [numDataTypes]kindInfo{
	Genotype:                {"Genotype", MultiDataGroup, schemaGenotype},
	Expression:              {"Expression", MultiDataGroup, schemaExpression},
	CopyNumber:              {"CopyNumber", MultiDataGroup, schemaCopyNumber},
	Cyto:                    {"Cyto", MultiDataGroup, schemaCyto},
	CopyNumberVariation:     {"CopyNumberVariation", MultiDataGroup, schemaCNV},
	DmetBiAllelic:           {"BiAllelic", DmetGroup, schemaDmetBiAllelic},
	DmetMultiAllelic:        {"MultiAllelic", DmetGroup, schemaDmetMultiAllelic},
	DmetCopyNumber:          {"CN", DmetGroup, schemaDmetCopyNumber},
	ChromosomeSummary:       {"Summary", ChromosomeGroup, schemaChromosomeSummary},
	AllelePeaks:             {"AllelePeaks", MultiDataGroup, schemaAllelePeaks},
	MarkerABSignals:         {"MarkerABSignals", MultiDataGroup, schemaMarkerABSignals},
	CytoGenotypeCall:        {"CytoGenotypeCall", MultiDataGroup, schemaCytoGenotypeCall},
	FamilialSamples:         {"Samples", FamilialGroup, schemaFamilialSamples},
	FamilialSegmentOverlaps: {"SegmentOverlaps", FamilialGroup, schemaFamilialOverlaps},

	SegmentCN:                  {"CN", SegmentGroup, schemaSegment},
	SegmentLOH:                 {"LOH", SegmentGroup, schemaSegment},
	SegmentCNNeutralLOH:        {"CNNeutralLOH", SegmentGroup, schemaSegment},
	SegmentNormalDiploid:       {"NormalDiploid", SegmentGroup, schemaSegment},
	SegmentNoCall:              {"NoCall", SegmentGroup, schemaSegment},
	SegmentMosaicism:           {"Mosaicism", SegmentGroup, schemaSegment},
	SegmentGenotypeConcordance: {"GenotypeConcordance", SegmentGroup, schemaSegment},
	SegmentGenotypeDiscordance: {"GenotypeDiscordance", SegmentGroup, schemaSegment},

	SegmentCNReference:              {"CNReference", SegmentExGroup, schemaSegmentEx},
	SegmentLOHReference:             {"LOHReference", SegmentExGroup, schemaSegmentEx},
	SegmentCNFamilial:               {"CNFamilial", SegmentExGroup, schemaSegmentEx},
	SegmentLOHFamilial:              {"LOHFamilial", SegmentExGroup, schemaSegmentEx},
	SegmentDenovoCopyNumber:         {"DenovoCopyNumber", SegmentExGroup, schemaSegmentEx},
	SegmentHemizygousParentOfOrigin: {"HemizygousParentOfOrigin", SegmentExGroup, schemaSegmentEx},
	SegmentUniparentalDisomy:        {"UniparentalDisomy", SegmentExGroup, schemaSegmentEx},
	SegmentMosaicismFamilial:        {"Mosaicism", SegmentExGroup, schemaSegmentEx},
}

// DataTypes returns every kind in declaration order.
func DataTypes() []DataType {
	out := make([]DataType, numDataTypes)
	for i := range out {
		out[i] = DataType(i)
	}
	return out
}

// SegmentTypes returns the chromosome segment kinds.
func SegmentTypes() []DataType {
	return []DataType{
		SegmentCN, SegmentLOH, SegmentCNNeutralLOH, SegmentNormalDiploid,
		SegmentNoCall, SegmentMosaicism, SegmentGenotypeConcordance, SegmentGenotypeDiscordance,
	}
}

// SegmentExTypes returns the keyed chromosome segment kinds.
func SegmentExTypes() []DataType {
	return []DataType{
		SegmentCNReference, SegmentLOHReference, SegmentCNFamilial, SegmentLOHFamilial,
		SegmentDenovoCopyNumber, SegmentHemizygousParentOfOrigin, SegmentUniparentalDisomy,
		SegmentMosaicismFamilial,
	}
}

// Valid reports whether t is a known kind.
func (t DataType) Valid() bool { return t >= 0 && t < numDataTypes }

// String returns the data set name of the kind.
func (t DataType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("DataType(%d)", int(t))
	}
	return kinds[t].name
}

// DataSetName returns the name of the kind's data set.
func (t DataType) DataSetName() string { return t.String() }

// DefaultGroup returns the group the kind is written to unless the writer
// names another one.
func (t DataType) DefaultGroup() string {
	if !t.Valid() {
		return ""
	}
	return kinds[t].group
}

// IsSegmentEx reports whether t uses the keyed segment schema.
func (t DataType) IsSegmentEx() bool { return t.Valid() && kinds[t].schema == schemaSegmentEx }

// SupportsMetrics reports whether metric columns may follow the fixed columns.
func (t DataType) SupportsMetrics() bool {
	if !t.Valid() {
		return false
	}
	s := kinds[t].schema
	return s != schemaFamilialSamples && s != schemaFamilialOverlaps
}

// HasNameColumns reports whether the fixed columns include text columns,
// whose width is the data set's maximum name length.
func (t DataType) HasNameColumns() bool {
	for _, c := range t.FixedColumns(1) {
		if c.Type == calvin.ColumnASCII || c.Type == calvin.ColumnUnicode {
			return true
		}
	}
	return false
}

// NumFixedColumns returns the number of columns preceding the metrics.
func (t DataType) NumFixedColumns() int { return len(t.FixedColumns(1)) }

// FixedColumns returns the kind's leading columns; text columns hold up to
// maxName characters.
func (t DataType) FixedColumns(maxName int) []calvin.ColumnInfo {
	if !t.Valid() {
		return nil
	}
	name := calvin.ASCIIColumn("ProbeSetName", maxName)
	u8, f32, u32 := calvin.UByteColumn, calvin.FloatColumn, calvin.UIntColumn

	switch kinds[t].schema {
	case schemaGenotype:
		return []calvin.ColumnInfo{name, u8("Call"), f32("Confidence")}
	case schemaExpression:
		return []calvin.ColumnInfo{name, f32("Quantification")}
	case schemaCopyNumber:
		return []calvin.ColumnInfo{name, u8("Chromosome"), u32("Position")}
	case schemaCyto:
		return []calvin.ColumnInfo{name, u8("Call"), f32("Confidence"), u8("Chromosome"),
			u32("StartPosition"), u32("StopPosition")}
	case schemaCNV:
		return []calvin.ColumnInfo{name, f32("Signal"), u8("Call"), f32("Confidence")}
	case schemaDmetBiAllelic:
		return []calvin.ColumnInfo{name, u8("Call"), f32("Confidence"), u8("Force"),
			f32("SignalA"), f32("SignalB"), u8("ContextA"), u8("ContextB")}
	case schemaDmetMultiAllelic:
		cols := []calvin.ColumnInfo{name, u8("Call"), f32("Confidence"), u8("Force"), u8("AlleleCount")}
		for _, a := range alleles {
			cols = append(cols, f32("Signal"+a))
		}
		for _, a := range alleles {
			cols = append(cols, u8("Context"+a))
		}
		return cols
	case schemaDmetCopyNumber:
		return []calvin.ColumnInfo{name, calvin.ShortColumn("Call"), f32("Confidence"),
			calvin.ShortColumn("Force"), f32("Estimate"), f32("Lower"), f32("Upper")}
	case schemaChromosomeSummary:
		return []calvin.ColumnInfo{u8("Chromosome"), calvin.ASCIIColumn("Display", maxName),
			u32("StartIndex"), u32("MarkerCount"), f32("MinSignal"), f32("MaxSignal"),
			f32("MedianCnState"), f32("HomFrequency"), f32("HetFrequency")}
	case schemaAllelePeaks:
		return []calvin.ColumnInfo{name, u8("Chromosome"), u32("Position")}
	case schemaMarkerABSignals:
		return []calvin.ColumnInfo{u32("Index")}
	case schemaCytoGenotypeCall:
		return []calvin.ColumnInfo{u32("Index"), u8("Call"), f32("Confidence"), u8("ForcedCall"),
			f32("ASignal"), f32("BSignal"), f32("SignalStrength"), f32("Contrast")}
	case schemaFamilialSamples:
		return []calvin.ColumnInfo{u32("SampleKey"), calvin.ASCIIColumn("ARRID", maxName),
			calvin.ASCIIColumn("CHPID", maxName), calvin.UnicodeColumn("CHPFilename", maxName),
			calvin.ASCIIColumn("Role", maxName), u8("RoleValidity"), f32("RoleConfidence")}
	case schemaFamilialOverlaps:
		return []calvin.ColumnInfo{calvin.ASCIIColumn("SegmentType", maxName), u32("ReferenceSampleKey"),
			calvin.ASCIIColumn("ReferenceSegmentID", maxName), u32("FamilialSampleKey"),
			calvin.ASCIIColumn("FamilialSegmentID", maxName)}
	case schemaSegment:
		return []calvin.ColumnInfo{u32("SegmentID"), u8("Chromosome"), u32("StartPosition"),
			u32("StopPosition"), calvin.IntColumn("MarkerCount"), u32("MeanMarkerDistance")}
	default:
		return []calvin.ColumnInfo{u32("SegmentID"), u32("ReferenceSampleKey"), u32("FamilialSampleKey"),
			u8("Chromosome"), u32("StartPosition"), u32("StopPosition"), u8("Call"), f32("Confidence"),
			calvin.IntColumn("MarkerCount"), f32("Homozygosity"), f32("Heterozygosity")}
	}
}

// alleles names the six allele slots of a multi-allelic DMET call.
var alleles = [6]string{"A", "B", "C", "D", "E", "F"}

// Columns returns the fixed columns followed by metrics.
func (t DataType) Columns(maxName int, metrics []calvin.ColumnInfo) []calvin.ColumnInfo {
	return append(t.FixedColumns(maxName), metrics...)
}

// isFixedGroup reports whether group is the default group of a kind that is
// not a keyed segment kind.
func isFixedGroup(group string) bool {
	for _, k := range kinds {
		if k.schema != schemaSegmentEx && k.group == group {
			return true
		}
	}
	return false
}

// kindOf resolves the kind of a data set from its group and name. A kind
// stored in its default group wins; keyed segment kinds match any group.
func kindOf(group, name string) (DataType, bool) {
	for i, k := range kinds {
		if k.name == name && k.group == group {
			return DataType(i), true
		}
	}
	for _, t := range SegmentExTypes() {
		if kinds[t].name == name {
			return t, true
		}
	}
	return 0, false
}
