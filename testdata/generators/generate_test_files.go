//go:build ignore

// Command generate_test_files writes one small file of each Calvin format
// to testdata/ for manual inspection with calvindump.
package main

import (
	"log"
	"path/filepath"

	"github.com/scigolib/calvin"
	"github.com/scigolib/calvin/cdf"
	"github.com/scigolib/calvin/cel"
	"github.com/scigolib/calvin/chp"
	"github.com/scigolib/calvin/dat"
)

const dir = "testdata"

func main() {
	img := dat.NewImage(4, 4)
	img.FileID = "DAT-FIXTURE"
	img.HeaderText = "[0..46001]  fixture.dat:CLS=4 RWS=4 XIN=1  YIN=1  VE=30        2.0 05/24/05 14:31:41"
	for i := range img.Pixels {
		img.Pixels[i] = uint16(i * 100)
	}
	must(dat.Write(filepath.Join(dir, "fixture.dat"), img))

	c := cel.NewData(2, 2)
	c.FileID = "CEL-FIXTURE"
	c.AlgorithmName = "Percentile"
	c.AddAlgParam("Percentile", calvin.FloatValue(0.75))
	c.AddAlgParam("IgnoreOutliersInShiftRows", calvin.TextValue("false"))
	c.Intensities = []float32{100, 200, 300, 400}
	c.Outliers = []cel.Coord{{X: 1, Y: 1}}
	c.Parents = append(c.Parents, img.GenericHeader())
	must(cel.Write(filepath.Join(dir, "fixture.CEL"), c))

	must(cdf.Write(filepath.Join(dir, "fixture.cdf"), &cdf.Data{
		FileID: "CDF-FIXTURE", ArrayType: "Fixture", Rows: 2, Cols: 2,
		ProbeSets: []cdf.ProbeSet{{
			Name: "AFFX-fixture", Type: cdf.ExpressionProbeSet, Direction: cdf.SenseDirection, Number: 1,
			Probes: []cdf.Probe{{X: 0, Y: 0, PBase: 'A', TBase: 'T', ProbeLength: 25}},
		}},
	}))

	spec := chp.FileSpec{Path: filepath.Join(dir, "fixture.CHP"), FileID: "CHP-FIXTURE", AlgorithmName: "fixture"}
	spec.AddDataSet(chp.DataSetSpec{Kind: chp.Genotype, Rows: 2, MaxNameLength: 8})
	w, err := chp.Create(spec)
	must(err)
	must(w.WriteEntry(chp.Genotype, &chp.ProbeSetGenotypeEntry{Name: "SNP_1", Call: 1, Confidence: 0.01}))
	must(w.WriteEntry(chp.Genotype, &chp.ProbeSetGenotypeEntry{Name: "SNP_2", Call: 2, Confidence: 0.02}))
	must(w.Close())
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
