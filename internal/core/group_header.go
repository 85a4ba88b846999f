package core

// DataGroupHeader is a named, ordered collection of data sets stored
// contiguously after the group header.
type DataGroupHeader struct {
	Name     string
	DataSets []DataSetHeader

	Offset     uint32 // first byte of this header
	NextOffset uint32 // next group header, 0 for the last group
}

// AddDataSet appends a data set and returns a pointer to the stored copy.
func (g *DataGroupHeader) AddDataSet(ds DataSetHeader) *DataSetHeader {
	g.DataSets = append(g.DataSets, ds)
	return &g.DataSets[len(g.DataSets)-1]
}

// DataSet returns the first data set named name.
func (g *DataGroupHeader) DataSet(name string) (*DataSetHeader, bool) {
	for i := range g.DataSets {
		if g.DataSets[i].Name == name {
			return &g.DataSets[i], true
		}
	}
	return nil, false
}

// EncodedSize returns the size of the group header alone.
func (g *DataGroupHeader) EncodedSize() int {
	return String16Size(g.Name) + 4 + 4
}

// NextOffsetPosition returns where the next-group field lives.
func (g *DataGroupHeader) NextOffsetPosition() int64 {
	return int64(g.Offset) + int64(String16Size(g.Name)) + 4
}

// Encode appends the group header using the assigned next offset.
func (g *DataGroupHeader) Encode(e *Encoder) {
	e.PutString16(g.Name)
	//nolint:gosec // G115: data set counts are bounded by MaxListCount
	e.PutUint32(uint32(len(g.DataSets)))
	e.PutUint32(g.NextOffset)
}

// DecodeDataGroupHeader reads a group header and every data set header of
// the group. Data set headers are located by following their next offsets,
// so packed rows are never read.
func DecodeDataGroupHeader(d *Decoder) (DataGroupHeader, error) {
	var g DataGroupHeader
	//nolint:gosec // G115: positions come from u32 offsets
	g.Offset = uint32(d.Offset())
	var err error
	if g.Name, err = d.String16(); err != nil {
		return g, err
	}
	n, err := d.Count("data set")
	if err != nil {
		return g, err
	}
	if g.NextOffset, err = d.Uint32(); err != nil {
		return g, err
	}
	g.DataSets = make([]DataSetHeader, 0, n)
	for range n {
		ds, err := DecodeDataSetHeader(d)
		if err != nil {
			return g, err
		}
		g.DataSets = append(g.DataSets, ds)
		d.SeekTo(int64(ds.NextOffset))
	}
	return g, nil
}
