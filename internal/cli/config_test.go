package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v, err := SetupConfig("calvintest")
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Config{BufferSize: DefaultBufferSize}, c)
}

func TestSetupConfig_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("tolerance: 0.5\nbuffer_size: 1024\nverbose: true\n"), 0o644))

	v, err := SetupConfig("calvintest")
	require.NoError(t, err)
	c, err := Load(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, c.Tolerance, 1e-12)
	assert.Equal(t, 1024, c.BufferSize)
	assert.True(t, c.Verbose)

	t.Setenv("CALVINTEST_TOLERANCE", "-1")
	_, err = Load(v)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(Config{Verbose: true}, &buf).Print("flushed")
	assert.Contains(t, buf.String(), "flushed")

	buf.Reset()
	NewLogger(Config{}, &buf).Print("quiet")
	assert.Empty(t, buf.String())

	path := filepath.Join(t.TempDir(), "calvin.log")
	NewLogger(Config{LogFile: path}, &buf).Print("to file")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
}
