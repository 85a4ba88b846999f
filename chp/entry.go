package chp

import (
	"fmt"

	"github.com/scigolib/calvin"
)

// Entry is one row of a result table. Implementations are the pointer
// types of the entry structs below; the entry must match the kind it is
// written as.
type Entry interface {
	values() []calvin.ParameterValue
	setValues(r *valueReader)
}

// ProbeSetGenotypeEntry is a Genotype row.
type ProbeSetGenotypeEntry struct {
	Name       string
	Call       uint8
	Confidence float32
	Metrics    []calvin.ParameterValue
}

// ProbeSetExpressionEntry is an Expression row.
type ProbeSetExpressionEntry struct {
	Name           string
	Quantification float32
	Metrics        []calvin.ParameterValue
}

// ProbeSetCopyNumberEntry is a CopyNumber row.
type ProbeSetCopyNumberEntry struct {
	Name     string
	Chr      uint8
	Position uint32
	Metrics  []calvin.ParameterValue
}

// CytoRegionEntry is a Cyto row.
type CytoRegionEntry struct {
	Name          string
	Call          uint8
	Confidence    float32
	Chr           uint8
	StartPosition uint32
	StopPosition  uint32
	Metrics       []calvin.ParameterValue
}

// CopyNumberVariationEntry is a CopyNumberVariation row.
type CopyNumberVariationEntry struct {
	Name       string
	Signal     float32
	Call       uint8
	Confidence float32
	Metrics    []calvin.ParameterValue
}

// DmetBiAllelicEntry is a DMET bi-allelic call.
type DmetBiAllelicEntry struct {
	Name       string
	Call       uint8
	Confidence float32
	Force      uint8
	SignalA    float32
	SignalB    float32
	ContextA   uint8
	ContextB   uint8
	Metrics    []calvin.ParameterValue
}

// DmetMultiAllelicEntry is a DMET multi-allelic call with up to six alleles.
type DmetMultiAllelicEntry struct {
	Name        string
	Call        uint8
	Confidence  float32
	Force       uint8
	AlleleCount uint8
	Signals     [6]float32
	Contexts    [6]uint8
	Metrics     []calvin.ParameterValue
}

// DmetCopyNumberEntry is a DMET copy number call.
type DmetCopyNumberEntry struct {
	Name       string
	Call       int16
	Confidence float32
	Force      int16
	Estimate   float32
	Lower      float32
	Upper      float32
	Metrics    []calvin.ParameterValue
}

// ChromosomeSummaryEntry summarizes one chromosome.
type ChromosomeSummaryEntry struct {
	Chr           uint8
	Display       string
	StartIndex    uint32
	MarkerCount   uint32
	MinSignal     float32
	MaxSignal     float32
	MedianCnState float32
	HomFrequency  float32
	HetFrequency  float32
	Metrics       []calvin.ParameterValue
}

// ChromosomeSegmentEntry is a row of a segment kind.
type ChromosomeSegmentEntry struct {
	SegmentID          uint32
	Chr                uint8
	StartPosition      uint32
	StopPosition       uint32
	MarkerCount        int32
	MeanMarkerDistance uint32
	Metrics            []calvin.ParameterValue
}

// ChromosomeSegmentExEntry is a row of a keyed segment kind.
type ChromosomeSegmentExEntry struct {
	SegmentID          uint32
	ReferenceSampleKey uint32
	FamilialSampleKey  uint32
	Chr                uint8
	StartPosition      uint32
	StopPosition       uint32
	Call               uint8
	Confidence         float32
	MarkerCount        int32
	Homozygosity       float32
	Heterozygosity     float32
	Metrics            []calvin.ParameterValue
}

// FamilialSampleEntry describes one sample of a familial analysis.
type FamilialSampleEntry struct {
	SampleKey      uint32
	ARRID          string
	CHPID          string
	CHPFilename    string
	Role           string
	RoleValidity   bool
	RoleConfidence float32
}

// FamilialSegmentOverlapEntry links a reference segment to a familial one.
type FamilialSegmentOverlapEntry struct {
	SegmentType        string
	ReferenceSampleKey uint32
	ReferenceSegmentID string
	FamilialSampleKey  uint32
	FamilialSegmentID  string
}

// AllelePeaksEntry carries the allele peak values of a marker as metrics.
type AllelePeaksEntry struct {
	Name     string
	Chr      uint8
	Position uint32
	Peaks    []calvin.ParameterValue
}

// MarkerABSignalsEntry carries the A and B signals of a marker as metrics.
type MarkerABSignalsEntry struct {
	Index   uint32
	Metrics []calvin.ParameterValue
}

// CytoGenotypeCallEntry is a genotype call of a cytogenetics marker.
type CytoGenotypeCallEntry struct {
	Index          uint32
	Call           uint8
	Confidence     float32
	ForcedCall     uint8
	ASignal        float32
	BSignal        float32
	SignalStrength float32
	Contrast       float32
	Metrics        []calvin.ParameterValue
}

// NewEntry returns an empty entry of the type stored by kind t.
func NewEntry(t DataType) Entry {
	if !t.Valid() {
		return nil
	}
	switch kinds[t].schema {
	case schemaGenotype:
		return &ProbeSetGenotypeEntry{}
	case schemaExpression:
		return &ProbeSetExpressionEntry{}
	case schemaCopyNumber:
		return &ProbeSetCopyNumberEntry{}
	case schemaCyto:
		return &CytoRegionEntry{}
	case schemaCNV:
		return &CopyNumberVariationEntry{}
	case schemaDmetBiAllelic:
		return &DmetBiAllelicEntry{}
	case schemaDmetMultiAllelic:
		return &DmetMultiAllelicEntry{}
	case schemaDmetCopyNumber:
		return &DmetCopyNumberEntry{}
	case schemaChromosomeSummary:
		return &ChromosomeSummaryEntry{}
	case schemaAllelePeaks:
		return &AllelePeaksEntry{}
	case schemaMarkerABSignals:
		return &MarkerABSignalsEntry{}
	case schemaCytoGenotypeCall:
		return &CytoGenotypeCallEntry{}
	case schemaFamilialSamples:
		return &FamilialSampleEntry{}
	case schemaFamilialOverlaps:
		return &FamilialSegmentOverlapEntry{}
	case schemaSegment:
		return &ChromosomeSegmentEntry{}
	default:
		return &ChromosomeSegmentExEntry{}
	}
}

// entryMatches reports whether e is the entry type stored by kind t.
func entryMatches(t DataType, e Entry) bool {
	want := NewEntry(t)
	return want != nil && fmt.Sprintf("%T", want) == fmt.Sprintf("%T", e)
}

// valueReader consumes decoded cells in column order. The first failure
// is kept and later reads return zero values.
type valueReader struct {
	vals []calvin.ParameterValue
	pos  int
	err  error
}

func (r *valueReader) next() (calvin.ParameterValue, bool) {
	if r.err != nil {
		return calvin.ParameterValue{}, false
	}
	if r.pos >= len(r.vals) {
		r.err = fmt.Errorf("row has %d columns, entry needs more", len(r.vals))
		return calvin.ParameterValue{}, false
	}
	v := r.vals[r.pos]
	r.pos++
	return v, true
}

func (r *valueReader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = fmt.Errorf("column %d: %w", r.pos-1, err)
	}
}

func (r *valueReader) str() string {
	v, ok := r.next()
	if !ok {
		return ""
	}
	var s string
	var err error
	if v.Type() == calvin.ParamText {
		s, err = v.Text()
	} else {
		s, err = v.Ascii()
	}
	r.keep(err)
	return s
}

func (r *valueReader) u8() uint8 {
	v, ok := r.next()
	if !ok {
		return 0
	}
	x, err := v.UInt8()
	r.keep(err)
	return x
}

func (r *valueReader) i16() int16 {
	v, ok := r.next()
	if !ok {
		return 0
	}
	x, err := v.Int16()
	r.keep(err)
	return x
}

func (r *valueReader) i32() int32 {
	v, ok := r.next()
	if !ok {
		return 0
	}
	x, err := v.Int32()
	r.keep(err)
	return x
}

func (r *valueReader) u32() uint32 {
	v, ok := r.next()
	if !ok {
		return 0
	}
	x, err := v.UInt32()
	r.keep(err)
	return x
}

func (r *valueReader) f32() float32 {
	v, ok := r.next()
	if !ok {
		return 0
	}
	x, err := v.Float()
	r.keep(err)
	return x
}

// rest returns the remaining cells, or nil when there are none.
func (r *valueReader) rest() []calvin.ParameterValue {
	if r.err != nil || r.pos >= len(r.vals) {
		return nil
	}
	out := append([]calvin.ParameterValue(nil), r.vals[r.pos:]...)
	r.pos = len(r.vals)
	return out
}

type vals = []calvin.ParameterValue

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (e *ProbeSetGenotypeEntry) values() vals {
	return append(vals{calvin.AsciiValue(e.Name), calvin.UInt8Value(e.Call), calvin.FloatValue(e.Confidence)}, e.Metrics...)
}

func (e *ProbeSetGenotypeEntry) setValues(r *valueReader) {
	e.Name, e.Call, e.Confidence, e.Metrics = r.str(), r.u8(), r.f32(), r.rest()
}

func (e *ProbeSetExpressionEntry) values() vals {
	return append(vals{calvin.AsciiValue(e.Name), calvin.FloatValue(e.Quantification)}, e.Metrics...)
}

func (e *ProbeSetExpressionEntry) setValues(r *valueReader) {
	e.Name, e.Quantification, e.Metrics = r.str(), r.f32(), r.rest()
}

func (e *ProbeSetCopyNumberEntry) values() vals {
	return append(vals{calvin.AsciiValue(e.Name), calvin.UInt8Value(e.Chr), calvin.UInt32Value(e.Position)}, e.Metrics...)
}

func (e *ProbeSetCopyNumberEntry) setValues(r *valueReader) {
	e.Name, e.Chr, e.Position, e.Metrics = r.str(), r.u8(), r.u32(), r.rest()
}

func (e *CytoRegionEntry) values() vals {
	return append(vals{
		calvin.AsciiValue(e.Name), calvin.UInt8Value(e.Call), calvin.FloatValue(e.Confidence),
		calvin.UInt8Value(e.Chr), calvin.UInt32Value(e.StartPosition), calvin.UInt32Value(e.StopPosition),
	}, e.Metrics...)
}

func (e *CytoRegionEntry) setValues(r *valueReader) {
	e.Name, e.Call, e.Confidence = r.str(), r.u8(), r.f32()
	e.Chr, e.StartPosition, e.StopPosition = r.u8(), r.u32(), r.u32()
	e.Metrics = r.rest()
}

func (e *CopyNumberVariationEntry) values() vals {
	return append(vals{
		calvin.AsciiValue(e.Name), calvin.FloatValue(e.Signal), calvin.UInt8Value(e.Call), calvin.FloatValue(e.Confidence),
	}, e.Metrics...)
}

func (e *CopyNumberVariationEntry) setValues(r *valueReader) {
	e.Name, e.Signal, e.Call, e.Confidence, e.Metrics = r.str(), r.f32(), r.u8(), r.f32(), r.rest()
}

func (e *DmetBiAllelicEntry) values() vals {
	return append(vals{
		calvin.AsciiValue(e.Name), calvin.UInt8Value(e.Call), calvin.FloatValue(e.Confidence), calvin.UInt8Value(e.Force),
		calvin.FloatValue(e.SignalA), calvin.FloatValue(e.SignalB), calvin.UInt8Value(e.ContextA), calvin.UInt8Value(e.ContextB),
	}, e.Metrics...)
}

func (e *DmetBiAllelicEntry) setValues(r *valueReader) {
	e.Name, e.Call, e.Confidence, e.Force = r.str(), r.u8(), r.f32(), r.u8()
	e.SignalA, e.SignalB, e.ContextA, e.ContextB = r.f32(), r.f32(), r.u8(), r.u8()
	e.Metrics = r.rest()
}

func (e *DmetMultiAllelicEntry) values() vals {
	v := vals{
		calvin.AsciiValue(e.Name), calvin.UInt8Value(e.Call), calvin.FloatValue(e.Confidence),
		calvin.UInt8Value(e.Force), calvin.UInt8Value(e.AlleleCount),
	}
	for _, s := range e.Signals {
		v = append(v, calvin.FloatValue(s))
	}
	for _, c := range e.Contexts {
		v = append(v, calvin.UInt8Value(c))
	}
	return append(v, e.Metrics...)
}

func (e *DmetMultiAllelicEntry) setValues(r *valueReader) {
	e.Name, e.Call, e.Confidence, e.Force, e.AlleleCount = r.str(), r.u8(), r.f32(), r.u8(), r.u8()
	for i := range e.Signals {
		e.Signals[i] = r.f32()
	}
	for i := range e.Contexts {
		e.Contexts[i] = r.u8()
	}
	e.Metrics = r.rest()
}

func (e *DmetCopyNumberEntry) values() vals {
	return append(vals{
		calvin.AsciiValue(e.Name), calvin.Int16Value(e.Call), calvin.FloatValue(e.Confidence), calvin.Int16Value(e.Force),
		calvin.FloatValue(e.Estimate), calvin.FloatValue(e.Lower), calvin.FloatValue(e.Upper),
	}, e.Metrics...)
}

func (e *DmetCopyNumberEntry) setValues(r *valueReader) {
	e.Name, e.Call, e.Confidence, e.Force = r.str(), r.i16(), r.f32(), r.i16()
	e.Estimate, e.Lower, e.Upper = r.f32(), r.f32(), r.f32()
	e.Metrics = r.rest()
}

func (e *ChromosomeSummaryEntry) values() vals {
	return append(vals{
		calvin.UInt8Value(e.Chr), calvin.AsciiValue(e.Display), calvin.UInt32Value(e.StartIndex),
		calvin.UInt32Value(e.MarkerCount), calvin.FloatValue(e.MinSignal), calvin.FloatValue(e.MaxSignal),
		calvin.FloatValue(e.MedianCnState), calvin.FloatValue(e.HomFrequency), calvin.FloatValue(e.HetFrequency),
	}, e.Metrics...)
}

func (e *ChromosomeSummaryEntry) setValues(r *valueReader) {
	e.Chr, e.Display, e.StartIndex, e.MarkerCount = r.u8(), r.str(), r.u32(), r.u32()
	e.MinSignal, e.MaxSignal, e.MedianCnState = r.f32(), r.f32(), r.f32()
	e.HomFrequency, e.HetFrequency = r.f32(), r.f32()
	e.Metrics = r.rest()
}

func (e *ChromosomeSegmentEntry) values() vals {
	return append(vals{
		calvin.UInt32Value(e.SegmentID), calvin.UInt8Value(e.Chr), calvin.UInt32Value(e.StartPosition),
		calvin.UInt32Value(e.StopPosition), calvin.Int32Value(e.MarkerCount), calvin.UInt32Value(e.MeanMarkerDistance),
	}, e.Metrics...)
}

func (e *ChromosomeSegmentEntry) setValues(r *valueReader) {
	e.SegmentID, e.Chr, e.StartPosition, e.StopPosition = r.u32(), r.u8(), r.u32(), r.u32()
	e.MarkerCount, e.MeanMarkerDistance = r.i32(), r.u32()
	e.Metrics = r.rest()
}

func (e *ChromosomeSegmentExEntry) values() vals {
	return append(vals{
		calvin.UInt32Value(e.SegmentID), calvin.UInt32Value(e.ReferenceSampleKey), calvin.UInt32Value(e.FamilialSampleKey),
		calvin.UInt8Value(e.Chr), calvin.UInt32Value(e.StartPosition), calvin.UInt32Value(e.StopPosition),
		calvin.UInt8Value(e.Call), calvin.FloatValue(e.Confidence), calvin.Int32Value(e.MarkerCount),
		calvin.FloatValue(e.Homozygosity), calvin.FloatValue(e.Heterozygosity),
	}, e.Metrics...)
}

func (e *ChromosomeSegmentExEntry) setValues(r *valueReader) {
	e.SegmentID, e.ReferenceSampleKey, e.FamilialSampleKey = r.u32(), r.u32(), r.u32()
	e.Chr, e.StartPosition, e.StopPosition = r.u8(), r.u32(), r.u32()
	e.Call, e.Confidence, e.MarkerCount = r.u8(), r.f32(), r.i32()
	e.Homozygosity, e.Heterozygosity = r.f32(), r.f32()
	e.Metrics = r.rest()
}

func (e *FamilialSampleEntry) values() vals {
	return vals{
		calvin.UInt32Value(e.SampleKey), calvin.AsciiValue(e.ARRID), calvin.AsciiValue(e.CHPID),
		calvin.TextValue(e.CHPFilename), calvin.AsciiValue(e.Role), calvin.UInt8Value(boolByte(e.RoleValidity)),
		calvin.FloatValue(e.RoleConfidence),
	}
}

func (e *FamilialSampleEntry) setValues(r *valueReader) {
	e.SampleKey, e.ARRID, e.CHPID, e.CHPFilename, e.Role = r.u32(), r.str(), r.str(), r.str(), r.str()
	e.RoleValidity, e.RoleConfidence = r.u8() != 0, r.f32()
}

func (e *FamilialSegmentOverlapEntry) values() vals {
	return vals{
		calvin.AsciiValue(e.SegmentType), calvin.UInt32Value(e.ReferenceSampleKey), calvin.AsciiValue(e.ReferenceSegmentID),
		calvin.UInt32Value(e.FamilialSampleKey), calvin.AsciiValue(e.FamilialSegmentID),
	}
}

func (e *FamilialSegmentOverlapEntry) setValues(r *valueReader) {
	e.SegmentType, e.ReferenceSampleKey, e.ReferenceSegmentID = r.str(), r.u32(), r.str()
	e.FamilialSampleKey, e.FamilialSegmentID = r.u32(), r.str()
}

func (e *AllelePeaksEntry) values() vals {
	return append(vals{calvin.AsciiValue(e.Name), calvin.UInt8Value(e.Chr), calvin.UInt32Value(e.Position)}, e.Peaks...)
}

func (e *AllelePeaksEntry) setValues(r *valueReader) {
	e.Name, e.Chr, e.Position, e.Peaks = r.str(), r.u8(), r.u32(), r.rest()
}

func (e *MarkerABSignalsEntry) values() vals {
	return append(vals{calvin.UInt32Value(e.Index)}, e.Metrics...)
}

func (e *MarkerABSignalsEntry) setValues(r *valueReader) {
	e.Index, e.Metrics = r.u32(), r.rest()
}

func (e *CytoGenotypeCallEntry) values() vals {
	return append(vals{
		calvin.UInt32Value(e.Index), calvin.UInt8Value(e.Call), calvin.FloatValue(e.Confidence), calvin.UInt8Value(e.ForcedCall),
		calvin.FloatValue(e.ASignal), calvin.FloatValue(e.BSignal), calvin.FloatValue(e.SignalStrength), calvin.FloatValue(e.Contrast),
	}, e.Metrics...)
}

func (e *CytoGenotypeCallEntry) setValues(r *valueReader) {
	e.Index, e.Call, e.Confidence, e.ForcedCall = r.u32(), r.u8(), r.f32(), r.u8()
	e.ASignal, e.BSignal, e.SignalStrength, e.Contrast = r.f32(), r.f32(), r.f32(), r.f32()
	e.Metrics = r.rest()
}
