package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Greater(t, cfg.Batch.MaxWorkers, 0)
	assert.Equal(t, 100, cfg.Batch.ConcurrencyPerWorker)
	assert.Equal(t, 300.0, cfg.Batch.TaskTimeoutSeconds)
	assert.False(t, cfg.Batch.Strict)
	assert.True(t, cfg.Storage.S3Secure)
	assert.Equal(t, 100.0, cfg.Storage.RequestsPerSec)
	assert.Equal(t, "fail.log", cfg.Output.FailLog)
}

func TestLoadCached(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoadFromFile(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "stacforge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[batch]
max_workers = 4
concurrency_per_worker = 25
strict = true

[storage]
s3_endpoint = "eodata.dataspace.copernicus.eu"

[output]
ndjson = 1000
fail_log = "off"
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Batch.MaxWorkers)
	assert.Equal(t, 25, cfg.Batch.ConcurrencyPerWorker)
	assert.True(t, cfg.Batch.Strict)
	assert.Equal(t, "eodata.dataspace.copernicus.eu", cfg.Storage.S3Endpoint)
	assert.Equal(t, 1000, cfg.Output.NDJSON)
	assert.Equal(t, "off", cfg.Output.FailLog)

	// unset keys keep their defaults
	assert.Equal(t, 300.0, cfg.Batch.TaskTimeoutSeconds)
	assert.True(t, cfg.Storage.S3Secure)

	// the file becomes the active configuration for later Load calls
	cached, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, cached)
	assert.Equal(t, 4, cached.Batch.MaxWorkers)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
