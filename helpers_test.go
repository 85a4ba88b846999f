package calvin

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedClock = WithClock(func() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
})

// sampleHeader builds a two-group header with a parent chain, parameters
// on every level and a zero-row data set.
func sampleHeader() *FileHeader {
	hdr := NewFileHeader("affymetrix-calvin-intensity")
	hdr.Generic.FileID = "0000000000TESTFILEID"
	hdr.Generic.Locale = "en-US"
	hdr.Generic.Params.Add("affymetrix-algorithm-name", TextValue("Feature Extraction"))
	hdr.Generic.Params.Add("affymetrix-algorithm-param-Percentile", FloatValue(0.75))

	dat := GenericDataHeader{FileTypeID: "affymetrix-calvin-scan-acquisition", FileID: "DAT1"}
	dat.Params.Add("affymetrix-dat-header", TextValue("[0..46001]  test:CLS=4733 RWS=4733 XIN=1  YIN=1  VE=30"))
	hdr.Generic.AddParent(dat)

	g := hdr.AddGroup("Default Group")
	ds := g.AddDataSet(DataSetHeader{Name: "Intensity", RowCount: 6})
	ds.Params.Add("scale", FloatValue(1.5))
	ds.AddColumn(FloatColumn("Intensity"))
	ds = g.AddDataSet(DataSetHeader{Name: "Pixel", RowCount: 6})
	ds.AddColumn(ShortColumn("Pixel"))
	ds = g.AddDataSet(DataSetHeader{Name: "Outlier", RowCount: 0})
	ds.AddColumn(ShortColumn("X"))
	ds.AddColumn(ShortColumn("Y"))

	g = hdr.AddGroup("Names")
	ds = g.AddDataSet(DataSetHeader{Name: "Probes", RowCount: 3})
	ds.AddColumn(ASCIIColumn("Name", 12))
	ds.AddColumn(UnicodeColumn("Label", 6))
	ds.AddColumn(ByteColumn("B"))
	ds.AddColumn(UByteColumn("UB"))
	ds.AddColumn(UShortColumn("US"))
	ds.AddColumn(IntColumn("I"))
	ds.AddColumn(UIntColumn("UI"))
	return hdr
}

func createSample(t *testing.T) (string, *Writer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.cel")
	w, err := Create(path, sampleHeader(), fixedClock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return path, w
}
