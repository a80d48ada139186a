package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryabkov82/table-merger/internal/format"
)

func parseArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	return parse(fs, args)
}

func TestDefaults(t *testing.T) {
	cfg, err := parseArgs(t)
	require.NoError(t, err)
	assert.True(t, cfg.Interactive())
	assert.True(t, cfg.HasHeaders)
	assert.Equal(t, 8192, cfg.SampleSize)
	assert.EqualValues(t, 0, cfg.MaxRowPerFile)
	assert.False(t, cfg.AddSourceFile)
}

func TestNonInteractive(t *testing.T) {
	cfg, err := parseArgs(t, "-dir", "./data/", "-ext", "csv", "-out", "./out/merged.csv")
	require.NoError(t, err)
	assert.False(t, cfg.Interactive())
	assert.Equal(t, format.TypeCSV, cfg.Ext)
	assert.Equal(t, "data", cfg.InputDir)
	assert.Equal(t, "out/merged.csv", cfg.OutputPath)
}

func TestExtRequiresDir(t *testing.T) {
	_, err := parseArgs(t, "-ext", ".csv")
	require.Error(t, err)
}

func TestUnknownExt(t *testing.T) {
	_, err := parseArgs(t, "-dir", ".", "-ext", ".doc")
	require.Error(t, err)
}

func TestBadSampleSize(t *testing.T) {
	_, err := parseArgs(t, "-sample", "0")
	require.Error(t, err)
}
