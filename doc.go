// Package calvin reads and writes Affymetrix Calvin generic data files.
//
// A Calvin file is a self-describing binary container: a generic data
// header with its chain of parent headers, followed by named data groups
// holding fixed-schema tables (data sets). Every table stores rowCount
// packed rows of typed columns at a known offset, so any cell can be read
// or rewritten in place.
//
// Basic usage:
//
//	hdr := calvin.NewFileHeader("affymetrix-calvin-intensity")
//	g := hdr.AddGroup("Default Group")
//	ds := g.AddDataSet(calvin.DataSetHeader{Name: "Intensity", RowCount: 4})
//	ds.AddColumn(calvin.FloatColumn("Intensity"))
//
//	w, err := calvin.Create("out.cel", hdr)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	set, _ := w.DataSet("Default Group", "Intensity")
//	_ = set.WriteCell(0, 0, calvin.FloatValue(123.5))
//
// Files holding many tables across many outputs are best written with a
// BufferWriter, which batches rows in memory and flushes them to their
// pre-computed offsets.
package calvin
