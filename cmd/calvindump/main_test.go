package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/scigolib/calvin/cel"
)

func writeSample(t *testing.T, dir, fileID string) string {
	t.Helper()
	d := cel.NewData(2, 2)
	d.FileID = fileID
	d.AlgorithmName = "Percentile"
	d.Intensities = []float32{1.5, 2.5, 3.5, 4.5}
	d.Pixels = []int16{9, 8, 7, 6}
	d.SetDATHeader("[0..46001] chip.dat:CLS=2 RWS=2 XIN=1 YIN=1 VE=30")
	path := filepath.Join(dir, fileID+".CEL")
	require.NoError(t, cel.Write(path, d))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestHex(t *testing.T) {
	path := writeSample(t, t.TempDir(), "A")
	out := execute(t, "hex", "--length", "4", path)
	// magic 59, version 1
	assert.Contains(t, out, "00000000: 3b 01 ")
}

func TestHeader_Formats(t *testing.T) {
	path := writeSample(t, t.TempDir(), "A")

	text := execute(t, "header", path)
	assert.Contains(t, text, "File type: "+cel.FileType)
	assert.Contains(t, text, "File ID: A")
	assert.Contains(t, text, "Parent 0:")
	assert.Contains(t, text, `Data set "Intensity": 4 rows`)

	var doc fileDoc
	packed := execute(t, "header", "--format", "msgpack", path)
	require.NoError(t, msgpack.Unmarshal([]byte(packed), &doc))
	assert.Equal(t, cel.FileType, doc.Generic.FileTypeID)
	require.Len(t, doc.Generic.Parents, 1)
	assert.Equal(t, cel.DATFileType, doc.Generic.Parents[0].FileTypeID)
	require.Len(t, doc.Groups, 1)
	assert.Equal(t, cel.DefaultGroup, doc.Groups[0].Name)

	dump := execute(t, "header", "--format", "spew", path)
	assert.Contains(t, dump, "FileTypeID: (string)")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"header", "--format", "xml", path})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "A")
	out := filepath.Join(dir, "intensity.npy")
	execute(t, "export", "--set", cel.IntensitySet, "--column", cel.IntensitySet, "-o", out, path)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	var got []float32
	require.NoError(t, npyio.Read(f, &got))
	assert.Equal(t, []float32{1.5, 2.5, 3.5, 4.5}, got)

	out = filepath.Join(dir, "pixels.npy")
	execute(t, "export", "--set", cel.PixelSet, "--column", cel.PixelSet, "-o", out, path)
	pf, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = pf.Close() }()
	var pixels []int16
	require.NoError(t, npyio.Read(pf, &pixels))
	assert.Equal(t, []int16{9, 8, 7, 6}, pixels)
}

func TestDigest_IgnoresHeader(t *testing.T) {
	dir := t.TempDir()
	a := execute(t, "digest", writeSample(t, dir, "A"))
	b := execute(t, "digest", writeSample(t, dir, "B"))
	assert.Equal(t, a, b)

	lines := strings.Split(strings.TrimSpace(a), "\n")
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "  total"))
	assert.Contains(t, a, cel.DefaultGroup+"/"+cel.IntensitySet)
}

func TestRepack_BufferSize(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	a := writeSample(t, dir, "A")
	b := writeSample(t, dir, "B")
	out := t.TempDir()

	msg := execute(t, "repack", "--buffer-size", "16", "-o", out, a, b)
	assert.Contains(t, msg, "repacked 2 files")
	assert.Contains(t, msg, "at most 16 bytes")
	assert.NotContains(t, msg, " 0 flushes")

	for _, in := range []string{a, b} {
		got := execute(t, "digest", repackPath(out, in))
		assert.Equal(t, execute(t, "digest", in), got)
	}
}

func TestRepack_FromConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CALVINDUMP_BUFFER_SIZE", "32")
	in := writeSample(t, t.TempDir(), "A")

	msg := execute(t, "repack", "-o", t.TempDir(), in)
	assert.Contains(t, msg, "at most 32 bytes")
}

func TestRepack_RefusesInPlace(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	in := writeSample(t, dir, "A")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"repack", "-o", dir, in})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.Error(t, cmd.Execute())
}
