package chp

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/calvin"
)

var testMetrics = []calvin.ColumnInfo{calvin.IntColumn("int"), calvin.FloatColumn("float")}

func testMetricValues() []calvin.ParameterValue {
	return []calvin.ParameterValue{calvin.Int32Value(-7), calvin.FloatValue(2.5)}
}

// sampleEntry returns a populated entry of kind t. Kinds that take metrics
// carry values for testMetrics.
func sampleEntry(t DataType) Entry {
	m := testMetricValues()
	entry := NewEntry(t)
	switch e := entry.(type) {
	case *ProbeSetGenotypeEntry:
		*e = ProbeSetGenotypeEntry{Name: "SNP_A-1", Call: 2, Confidence: 0.125, Metrics: m}
	case *ProbeSetExpressionEntry:
		*e = ProbeSetExpressionEntry{Name: "AFFX-BioB", Quantification: 1234.5, Metrics: m}
	case *ProbeSetCopyNumberEntry:
		*e = ProbeSetCopyNumberEntry{Name: "CN_473963", Chr: 1, Position: 61736, Metrics: m}
	case *CytoRegionEntry:
		*e = CytoRegionEntry{Name: "1p36.33", Call: 1, Confidence: 0.9, Chr: 1, StartPosition: 1, StopPosition: 2300000, Metrics: m}
	case *CopyNumberVariationEntry:
		*e = CopyNumberVariationEntry{Name: "CNV_1", Signal: 1.75, Call: 3, Confidence: 0.5, Metrics: m}
	case *DmetBiAllelicEntry:
		*e = DmetBiAllelicEntry{Name: "AM_10001", Call: 1, Confidence: 0.01, Force: 2,
			SignalA: 100, SignalB: 200, ContextA: 3, ContextB: 4, Metrics: m}
	case *DmetMultiAllelicEntry:
		*e = DmetMultiAllelicEntry{Name: "AM_10002", Call: 5, Confidence: 0.02, Force: 6, AlleleCount: 3,
			Signals: [6]float32{1, 2, 3, 4, 5, 6}, Contexts: [6]uint8{6, 5, 4, 3, 2, 1}, Metrics: m}
	case *DmetCopyNumberEntry:
		*e = DmetCopyNumberEntry{Name: "AM_10003", Call: -1, Confidence: 0.3, Force: 2,
			Estimate: 2.1, Lower: 1.9, Upper: 2.3, Metrics: m}
	case *ChromosomeSummaryEntry:
		*e = ChromosomeSummaryEntry{Chr: 23, Display: "X", StartIndex: 100, MarkerCount: 5000,
			MinSignal: -1.5, MaxSignal: 1.5, MedianCnState: 2, HomFrequency: 0.3, HetFrequency: 0.7, Metrics: m}
	case *AllelePeaksEntry:
		*e = AllelePeaksEntry{Name: "S-3", Chr: 4, Position: 98765, Peaks: m}
	case *MarkerABSignalsEntry:
		*e = MarkerABSignalsEntry{Index: 42, Metrics: m}
	case *CytoGenotypeCallEntry:
		*e = CytoGenotypeCallEntry{Index: 7, Call: 1, Confidence: 0.01, ForcedCall: 2,
			ASignal: 3.5, BSignal: 4.5, SignalStrength: 5.5, Contrast: -0.25, Metrics: m}
	case *FamilialSampleEntry:
		*e = FamilialSampleEntry{SampleKey: 1, ARRID: "arr-1", CHPID: "chp-1",
			CHPFilename: "proband.cychp", Role: "index", RoleValidity: true, RoleConfidence: 0.99}
	case *FamilialSegmentOverlapEntry:
		*e = FamilialSegmentOverlapEntry{SegmentType: "LOH", ReferenceSampleKey: 1,
			ReferenceSegmentID: "seg-1", FamilialSampleKey: 2, FamilialSegmentID: "seg-9"}
	case *ChromosomeSegmentEntry:
		*e = ChromosomeSegmentEntry{SegmentID: 9, Chr: 2, StartPosition: 1000, StopPosition: 9000,
			MarkerCount: 40, MeanMarkerDistance: 200, Metrics: m}
	case *ChromosomeSegmentExEntry:
		*e = ChromosomeSegmentExEntry{SegmentID: 10, ReferenceSampleKey: 1, FamilialSampleKey: 2, Chr: 3,
			StartPosition: 10, StopPosition: 20, Call: 1, Confidence: 0.75, MarkerCount: -3,
			Homozygosity: 0.4, Heterozygosity: 0.6, Metrics: m}
	default:
		panic("unhandled entry type")
	}
	return entry
}

func allKindsSpec(path string) FileSpec {
	spec := FileSpec{
		Path:             path,
		FileID:           "CHP-TEST",
		Locale:           "en-US",
		AlgorithmName:    "BRLMM-P",
		AlgorithmVersion: "1.0",
		ArrayType:        "GenomeWideSNP_6",
	}
	spec.AddAlgParams(
		calvin.NameValue{Name: "prior-size", Value: calvin.Int32Value(10000)},
		calvin.NameValue{Name: "Percentile", Value: calvin.FloatValue(0.75)},
	)
	spec.AddSummaryParam("call-rate", calvin.FloatValue(99.5))
	spec.AddParent(calvin.GenericDataHeader{FileTypeID: "affymetrix-calvin-intensity", FileID: "CEL1"})
	for _, t := range DataTypes() {
		ds := DataSetSpec{Kind: t, Rows: 1, MaxNameLength: 16}
		if t.SupportsMetrics() {
			ds.Metrics = testMetrics
		}
		spec.AddDataSet(ds)
	}
	return spec
}

func TestEntry_EveryKindRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all.cychp")
	spec := allKindsSpec(path)

	w, err := Create(spec)
	require.NoError(t, err)
	for _, k := range DataTypes() {
		require.NoError(t, w.WriteEntry(k, sampleEntry(k)), k.String())
	}
	require.NoError(t, w.Close())

	f, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, "BRLMM-P", f.AlgName())
	assert.Equal(t, "1.0", f.AlgVersion())
	assert.Equal(t, "GenomeWideSNP_6", f.ArrayType())
	assert.Equal(t, "10000", f.AlgorithmParameter("prior-size"))
	assert.Equal(t, "0.750000", f.AlgorithmParameter("Percentile"))
	assert.Equal(t, "", f.AlgorithmParameter("bogus"))
	assert.Equal(t, "99.500000", f.SummaryParameter("call-rate"))
	assert.Equal(t, 2, f.AlgParams().Len())
	assert.Equal(t, 1, f.SummaryParams().Len())
	parent, ok := f.GenericHeader().FindParent("affymetrix-calvin-intensity")
	require.True(t, ok)
	assert.Equal(t, "CEL1", parent.FileID)

	assert.ElementsMatch(t, DataTypes(), f.DataTypes())
	for _, k := range DataTypes() {
		t.Run(k.String()+"/"+k.DefaultGroup(), func(t *testing.T) {
			assert.Equal(t, 1, f.EntryCount(k))
			got, err := f.Entry(k, 0)
			require.NoError(t, err)
			assert.Equal(t, sampleEntry(k), got)
			if k.SupportsMetrics() {
				assert.Equal(t, 2, f.NumMetricColumns(k))
			} else {
				assert.Equal(t, 0, f.NumMetricColumns(k))
			}
		})
	}
}

func TestFileSpec_HeaderValidation(t *testing.T) {
	tests := []struct {
		name string
		ds   []DataSetSpec
	}{
		{"missing name length", []DataSetSpec{{Kind: Genotype, Rows: 1}}},
		{"metrics on familial kind", []DataSetSpec{{Kind: FamilialSamples, Rows: 1, MaxNameLength: 4, Metrics: testMetrics}}},
		{"duplicate kind", []DataSetSpec{{Kind: Genotype, MaxNameLength: 4}, {Kind: Genotype, MaxNameLength: 4}}},
		{"negative rows", []DataSetSpec{{Kind: MarkerABSignals, Rows: -1}}},
		{"invalid kind", []DataSetSpec{{Kind: DataType(99)}}},
		{"group on fixed kind", []DataSetSpec{{Kind: Genotype, Group: "g1", MaxNameLength: 4}}},
		{"keyed segment in segment group", []DataSetSpec{{Kind: SegmentMosaicismFamilial, Group: SegmentGroup}}},
		{"keyed segment in dmet group", []DataSetSpec{{Kind: SegmentCNReference, Group: DmetGroup}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := FileSpec{Path: "x", DataSets: tt.ds}
			_, err := spec.Header()
			assert.Error(t, err)
		})
	}
}

func TestFileSpec_GroupsInDeclarationOrder(t *testing.T) {
	spec := FileSpec{}
	spec.AddDataSet(DataSetSpec{Kind: DmetCopyNumber, MaxNameLength: 8})
	spec.AddDataSet(DataSetSpec{Kind: Genotype, MaxNameLength: 8})
	spec.AddDataSet(DataSetSpec{Kind: DmetBiAllelic, MaxNameLength: 8})
	spec.AddDataSet(DataSetSpec{Kind: SegmentCNReference, Group: "g1"})

	hdr, err := spec.Header()
	require.NoError(t, err)
	require.Len(t, hdr.Groups, 3)
	assert.Equal(t, DmetGroup, hdr.Groups[0].Name)
	assert.Equal(t, MultiDataGroup, hdr.Groups[1].Name)
	assert.Equal(t, "g1", hdr.Groups[2].Name)
	require.Len(t, hdr.Groups[0].DataSets, 2)
	assert.Equal(t, "CN", hdr.Groups[0].DataSets[0].Name)
	assert.Equal(t, "BiAllelic", hdr.Groups[0].DataSets[1].Name)
	assert.Equal(t, MultiDataFileType, hdr.Generic.FileTypeID)
}

func TestWriter_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.cychp")
	spec := FileSpec{Path: path}
	spec.AddDataSet(DataSetSpec{Kind: Genotype, Rows: 1, MaxNameLength: 4})
	w, err := Create(spec)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	err = w.WriteEntry(Expression, &ProbeSetExpressionEntry{Name: "a"})
	assert.ErrorIs(t, err, calvin.ErrKindNotFound)

	err = w.WriteEntry(Genotype, &ProbeSetExpressionEntry{Name: "a"})
	assert.ErrorIs(t, err, calvin.ErrTypeMismatch)

	err = w.WriteEntry(Genotype, &ProbeSetGenotypeEntry{Name: "a", Metrics: testMetricValues()})
	assert.ErrorIs(t, err, calvin.ErrTypeMismatch, "metric count must match the schema")

	err = w.WriteEntry(Genotype, &ProbeSetGenotypeEntry{Name: "too-long"})
	assert.ErrorIs(t, err, calvin.ErrIndexOutOfRange)

	require.NoError(t, w.WriteEntry(Genotype, &ProbeSetGenotypeEntry{Name: "ok"}))
	assert.Equal(t, 1, w.Written(Genotype, MultiDataGroup))
	err = w.WriteEntry(Genotype, &ProbeSetGenotypeEntry{Name: "full"})
	assert.ErrorIs(t, err, calvin.ErrIndexOutOfRange)
}

func TestOpen_RejectsOtherFileTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.cel")
	hdr := calvin.NewFileHeader("affymetrix-calvin-intensity")
	w, err := calvin.Create(path, hdr)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = Open(path)
	assert.ErrorIs(t, err, calvin.ErrFileFormat)
}

func TestOpen_MissingKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.cychp")
	spec := FileSpec{Path: path}
	spec.AddDataSet(DataSetSpec{Kind: Genotype, Rows: 0, MaxNameLength: 4})
	w, err := Create(spec)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, 0, f.EntryCount(Genotype))
	assert.Equal(t, 0, f.EntryCount(Expression))
	_, err = f.Entry(Expression, 0)
	assert.ErrorIs(t, err, calvin.ErrKindNotFound)
	_, err = f.Genotype(0)
	assert.ErrorIs(t, err, calvin.ErrIndexOutOfRange)
	assert.Equal(t, 4, f.MaxNameLength(Genotype))
	assert.Equal(t, "", f.AlgName())
}

func TestBufferWriter_GenotypeTenThousandRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geno.cychp")
	spec := FileSpec{Path: path, AlgorithmName: "test"}
	spec.AddDataSet(DataSetSpec{Kind: Genotype, Rows: 10000, MaxNameLength: 12})

	w := NewBufferWriter(calvin.WithMaxBufferSize(102400))
	require.NoError(t, w.Initialize([]FileSpec{spec}))
	for i := range 10000 {
		e := &ProbeSetGenotypeEntry{Name: strconv.Itoa(i), Call: uint8(i % 4), Confidence: float32(i)}
		require.NoError(t, w.WriteEntry(Genotype, 0, e))
	}
	require.NoError(t, w.FlushBuffer())
	require.NoError(t, w.Close())
	assert.Greater(t, w.Flushes(), 1)

	f, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.Equal(t, 10000, f.EntryCount(Genotype))
	for _, i := range []int{0, 1, 2, 3, 4097, 5000, 9999} {
		e, err := f.Genotype(i)
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(i), e.Name)
		assert.Equal(t, uint8(i%4), e.Call)
		assert.InDelta(t, float64(i), float64(e.Confidence), 0.0001)
	}
}

func TestBufferWriter_TwoFilesNoBleed(t *testing.T) {
	dir := t.TempDir()
	offsets := []int{0, 1001}
	specs := make([]FileSpec, len(offsets))
	for f := range specs {
		specs[f] = FileSpec{Path: filepath.Join(dir, "out"+strconv.Itoa(f)+".cychp")}
		specs[f].AddDataSet(DataSetSpec{Kind: Expression, Rows: 5000, MaxNameLength: 6})
		specs[f].AddDataSet(DataSetSpec{Kind: Genotype, Rows: 10000, MaxNameLength: 6})
	}

	w := NewBufferWriter(calvin.WithMaxBufferSize(40000))
	require.NoError(t, w.Initialize(specs))
	for i := range 10000 {
		for f, off := range offsets {
			v := i + off
			if i < 5000 {
				e := &ProbeSetExpressionEntry{Name: strconv.Itoa(v), Quantification: float32(v)}
				require.NoError(t, w.WriteEntry(Expression, f, e))
			}
			e := &ProbeSetGenotypeEntry{Name: strconv.Itoa(v), Call: uint8(v % 4), Confidence: float32(v)}
			require.NoError(t, w.WriteEntry(Genotype, f, e))
		}
	}
	require.NoError(t, w.Close())

	for fi, off := range offsets {
		f, err := Open(specs[fi].Path)
		require.NoError(t, err)
		for i := range 5000 {
			e, err := f.Expression(i)
			require.NoError(t, err)
			require.Equal(t, strconv.Itoa(i+off), e.Name)
			require.InDelta(t, float64(i+off), float64(e.Quantification), 0.0001)
		}
		for _, i := range []int{0, 4999, 5000, 9999} {
			e, err := f.Genotype(i)
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(i+off), e.Name)
		}
		require.NoError(t, f.Close())
	}
}

func TestBufferWriter_OverwritesSkeletonValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dmet.cychp")
	spec := FileSpec{Path: path}
	spec.AddDataSet(DataSetSpec{Kind: DmetCopyNumber, Rows: 5, MaxNameLength: 10})

	cw, err := Create(spec)
	require.NoError(t, err)
	for i := range 5 {
		require.NoError(t, cw.WriteEntry(DmetCopyNumber, &DmetCopyNumberEntry{Name: "AM_" + strconv.Itoa(i), Call: 22}))
	}
	require.NoError(t, cw.Close())

	w := NewBufferWriter()
	require.NoError(t, w.Attach([]string{path}, []DataType{DmetCopyNumber}))
	require.NoError(t, w.WriteEntry(DmetCopyNumber, 0, &DmetCopyNumberEntry{Name: "AM_0", Call: 33, Estimate: 1.5}))
	written, err := w.Written(DmetCopyNumber, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	require.NoError(t, w.FlushBuffer())
	require.NoError(t, w.Close())

	f, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	e, err := f.DmetCopyNumber(0)
	require.NoError(t, err)
	assert.Equal(t, int16(33), e.Call)
	assert.InDelta(t, 1.5, e.Estimate, 1e-6)
	e, err = f.DmetCopyNumber(1)
	require.NoError(t, err)
	assert.Equal(t, int16(22), e.Call)
}

func TestBufferWriter_SegmentExStreams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fam.cychp")
	spec := FileSpec{Path: path}
	for _, group := range []string{"g1", "g2"} {
		for _, k := range SegmentExTypes() {
			ds := DataSetSpec{Kind: k, Group: group, Rows: 2}
			if k == SegmentLOHFamilial {
				ds.Metrics = testMetrics
			}
			spec.AddDataSet(ds)
		}
	}

	w := NewBufferWriter(calvin.WithMaxBufferSize(1))
	require.NoError(t, w.Initialize([]FileSpec{spec}))
	for gi, group := range []string{"g1", "g2"} {
		for row := range 2 {
			e := &ChromosomeSegmentExEntry{SegmentID: uint32(10*gi + row), Chr: uint8(gi + 1)}
			require.NoError(t, w.WriteEntryInGroup(SegmentCNReference, group, 0, e))
			e = &ChromosomeSegmentExEntry{SegmentID: uint32(100*gi + row), Metrics: testMetricValues()}
			require.NoError(t, w.WriteEntryInGroup(SegmentLOHFamilial, group, 0, e))
		}
	}
	require.NoError(t, w.Close())
	assert.Equal(t, 8, w.Flushes(), "a ceiling below one row flushes every entry")

	f, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"g1", "g2"}, f.Groups(SegmentCNReference))
	for _, group := range []string{"g1", "g2"} {
		for _, k := range SegmentExTypes() {
			if k == SegmentLOHFamilial {
				require.Equal(t, 2, f.NumMetricColumnsInGroup(k, group))
				c, err := f.MetricColumnInGroup(k, group, 0)
				require.NoError(t, err)
				assert.Equal(t, "int", c.Name)
				c, err = f.MetricColumnInGroup(k, group, 1)
				require.NoError(t, err)
				assert.Equal(t, "float", c.Name)
				_, err = f.MetricColumnInGroup(k, group, 2)
				assert.ErrorIs(t, err, calvin.ErrIndexOutOfRange)
			} else {
				assert.Equal(t, 0, f.NumMetricColumnsInGroup(k, group), k.String())
			}
		}
	}

	e, err := f.SegmentEx(SegmentCNReference, "g2", 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), e.SegmentID)
	assert.Equal(t, uint8(2), e.Chr)
	e, err = f.SegmentEx(SegmentLOHFamilial, "g1", 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), e.SegmentID)
	assert.Equal(t, testMetricValues(), e.Metrics)
}

func TestBufferWriter_UndeclaredSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.cychp")
	spec := FileSpec{Path: path}
	spec.AddDataSet(DataSetSpec{Kind: Genotype, Rows: 1, MaxNameLength: 4})

	w := NewBufferWriter()
	err := w.WriteEntry(Genotype, 0, &ProbeSetGenotypeEntry{})
	assert.ErrorIs(t, err, calvin.ErrNotInitialized)

	require.NoError(t, w.Initialize([]FileSpec{spec}))
	assert.ErrorIs(t, w.Initialize([]FileSpec{spec}), calvin.ErrAlreadyInitialized)

	err = w.WriteEntry(Expression, 0, &ProbeSetExpressionEntry{})
	assert.ErrorIs(t, err, calvin.ErrKindNotFound)
	err = w.WriteEntry(Genotype, 1, &ProbeSetGenotypeEntry{})
	assert.ErrorIs(t, err, calvin.ErrKindNotFound)
	require.NoError(t, w.Close())
}

func TestBufferWriter_AttachRejectsOtherFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.cel")
	cw, err := calvin.Create(path, calvin.NewFileHeader("affymetrix-calvin-intensity"))
	require.NoError(t, err)
	require.NoError(t, cw.Close())

	w := NewBufferWriter()
	assert.ErrorIs(t, w.Attach([]string{path}, nil), calvin.ErrFileFormat)
}

func TestFileSpec_GroupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.cychp")
	spec := FileSpec{Path: path}
	spec.AddDataSet(DataSetSpec{Kind: Genotype, Group: MultiDataGroup, Rows: 1, MaxNameLength: 4})
	spec.AddDataSet(DataSetSpec{Kind: SegmentMosaicismFamilial, Group: "g1", Rows: 1})
	spec.AddDataSet(DataSetSpec{Kind: SegmentMosaicismFamilial, Group: SegmentExGroup, Rows: 1})
	w, err := Create(spec)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []DataType{Genotype, SegmentMosaicismFamilial}, f.DataTypes())
	assert.Equal(t, 1, f.EntryCount(Genotype))
	assert.Equal(t, 0, f.EntryCount(SegmentMosaicism))
	assert.Equal(t, []string{"g1", SegmentExGroup}, f.Groups(SegmentMosaicismFamilial))
	assert.Equal(t, 1, f.EntryCountInGroup(SegmentMosaicismFamilial, "g1"))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		group, name string
		want        DataType
	}{
		{DmetGroup, "CN", DmetCopyNumber},
		{SegmentGroup, "CN", SegmentCN},
		{SegmentGroup, "Mosaicism", SegmentMosaicism},
		{SegmentExGroup, "Mosaicism", SegmentMosaicismFamilial},
		{"g7", "Mosaicism", SegmentMosaicismFamilial},
		{"g7", "CNReference", SegmentCNReference},
		{MultiDataGroup, "Genotype", Genotype},
	}
	for _, tt := range tests {
		got, ok := kindOf(tt.group, tt.name)
		require.True(t, ok, tt.group+"/"+tt.name)
		assert.Equal(t, tt.want, got)
	}
	_, ok := kindOf("g7", "Genotype")
	assert.False(t, ok)
}

func TestDataType_Schema(t *testing.T) {
	assert.Len(t, DataTypes(), 30)
	assert.Len(t, SegmentTypes(), 8)
	assert.Len(t, SegmentExTypes(), 8)
	assert.Equal(t, "DataType(99)", DataType(99).String())
	assert.Equal(t, 17, DmetMultiAllelic.NumFixedColumns())
	assert.False(t, MarkerABSignals.HasNameColumns())
	assert.True(t, ChromosomeSummary.HasNameColumns())
	assert.True(t, SegmentUniparentalDisomy.IsSegmentEx())
	assert.False(t, SegmentCN.IsSegmentEx())

	cols := Genotype.Columns(12, testMetrics)
	require.Len(t, cols, 5)
	assert.Equal(t, 12, cols[0].Width())
	assert.Equal(t, "int", cols[3].Name)
	for _, k := range DataTypes() {
		e := NewEntry(k)
		require.NotNil(t, e, k.String())
		assert.True(t, entryMatches(k, e))
	}
	assert.Nil(t, NewEntry(DataType(-1)))
}
