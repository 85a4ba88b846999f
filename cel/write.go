package cel

import (
	"encoding/binary"
	"math"

	"github.com/scigolib/calvin"
)

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
	if err := writeSets(w, d); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func writeSets(w *calvin.Writer, d *Data) error {
	put := func(name string, data []byte) error {
		ds, err := w.DataSet(DefaultGroup, name)
		if err != nil {
			return err
		}
		return ds.WriteRows(0, data)
	}
	if err := put(IntensitySet, packFloats(d.Intensities)); err != nil {
		return err
	}
	if len(d.StdDevs) > 0 {
		if err := put(StdDevSet, packFloats(d.StdDevs)); err != nil {
			return err
		}
	}
	if len(d.Pixels) > 0 {
		if err := put(PixelSet, packShorts(d.Pixels)); err != nil {
			return err
		}
	}
	if err := put(OutlierSet, packCoords(d.Outliers)); err != nil {
		return err
	}
	return put(MaskSet, packCoords(d.Masked))
}

func packFloats(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		binary.BigEndian.PutUint32(b[4*i:], math.Float32bits(x))
	}
	return b
}

func packShorts(v []int16) []byte {
	b := make([]byte, 2*len(v))
	for i, x := range v {
		//nolint:gosec // G115: two's complement bit pattern is intended
		binary.BigEndian.PutUint16(b[2*i:], uint16(x))
	}
	return b
}

func packCoords(cs []Coord) []byte {
	b := make([]byte, 4*len(cs))
	for i, c := range cs {
		//nolint:gosec // G115: two's complement bit pattern is intended
		binary.BigEndian.PutUint16(b[4*i:], uint16(c.X))
		//nolint:gosec // G115: two's complement bit pattern is intended
		binary.BigEndian.PutUint16(b[4*i+2:], uint16(c.Y))
	}
	return b
}
