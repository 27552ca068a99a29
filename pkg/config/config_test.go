package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Defaults(t *testing.T) {
	// Act
	cfg, err := Decode(New())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 0, cfg.Scan.Workers)
	assert.Equal(t, "little", cfg.Scan.ByteOrder)
	assert.True(t, cfg.Scan.Prefilter)
	assert.True(t, cfg.Scan.ExtractArchives)
	assert.Equal(t, DefaultOutputPath, cfg.Output.Path)
	assert.Equal(t, FormatText, cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.Empty(t, cfg.Output.Datastore)
}

func TestReadFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "walker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
scan:
  workers: 4
  byte_order: big
  prefilter: false
output:
  format: json
  datastore: results.db
`), 0o644))
	v := New()

	// Act
	require.NoError(t, ReadFile(v, path))
	cfg, err := Decode(v)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, "big", cfg.Scan.ByteOrder)
	assert.False(t, cfg.Scan.Prefilter)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, "results.db", cfg.Output.Datastore)
	assert.Equal(t, DefaultOutputPath, cfg.Output.Path, "unset keys keep defaults")
}

func TestReadFile_Missing(t *testing.T) {
	v := New()

	err := ReadFile(v, filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestReadFile_SearchPathOptional(t *testing.T) {
	// Arrange
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	// Act
	err := ReadFile(New(), "")

	// Assert
	assert.NoError(t, err)
}

func TestEnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("WALKER_SCAN_WORKERS", "8")
	t.Setenv("WALKER_OUTPUT_FORMAT", "sarif")

	// Act
	cfg, err := Decode(New())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Scan.Workers)
	assert.Equal(t, FormatSARIF, cfg.Output.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "negative workers", key: "scan.workers", val: -1},
		{name: "negative max size", key: "scan.max_file_size", val: -5},
		{name: "bad byte order", key: "scan.byte_order", val: "middle"},
		{name: "bad format", key: "output.format", val: "xml"},
		{name: "bad color", key: "output.color", val: "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.val)

			_, err := Decode(v)

			assert.Error(t, err)
		})
	}
}
