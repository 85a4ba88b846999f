package calvin

import (
	"fmt"
	"io"

	"github.com/scigolib/calvin/internal/core"
	"github.com/scigolib/calvin/internal/utils"
)

// DataGroup is a named, ordered collection of data sets.
type DataGroup struct {
	hdr *core.DataGroupHeader
	src io.ReaderAt
	dst io.WriterAt
}

// Name returns the group name.
func (g *DataGroup) Name() string { return g.hdr.Name }

// Header returns the group header. It must not be modified.
func (g *DataGroup) Header() *DataGroupHeader { return g.hdr }

// NumDataSets returns the number of data sets in the group.
func (g *DataGroup) NumDataSets() int { return len(g.hdr.DataSets) }

// DataSets returns the data sets in file order.
func (g *DataGroup) DataSets() []*DataSet {
	out := make([]*DataSet, len(g.hdr.DataSets))
	for i := range g.hdr.DataSets {
		out[i] = newDataSet(&g.hdr.DataSets[i], g.src, g.dst)
	}
	return out
}

// DataSetAt returns data set i of the group.
func (g *DataGroup) DataSetAt(i int) (*DataSet, error) {
	if i < 0 || i >= len(g.hdr.DataSets) {
		return nil, utils.RangeError("data set", i, len(g.hdr.DataSets))
	}
	return newDataSet(&g.hdr.DataSets[i], g.src, g.dst), nil
}

// DataSet returns the first data set named name.
func (g *DataGroup) DataSet(name string) (*DataSet, error) {
	ds, ok := g.hdr.DataSet(name)
	if !ok {
		return nil, fmt.Errorf("%w: data set %q in group %q", ErrKindNotFound, name, g.hdr.Name)
	}
	return newDataSet(ds, g.src, g.dst), nil
}
