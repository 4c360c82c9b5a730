package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 1000, cfg.Cache.MaxSize)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Cloud.Enabled)
	assert.True(t, cfg.Bus.Embedded)
	assert.Equal(t, 2*time.Minute, cfg.Workflow.Timeout)
	assert.Equal(t, 4, cfg.Workflow.BatchConcurrency)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
cache:
  max_size: 50
  ttl: 10m
cloud:
  enabled: true
  endpoint: https://code.example.com
workflow:
  timeout: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.Cache.MaxSize)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Cloud.Enabled)
	assert.Equal(t, "https://code.example.com", cfg.Cloud.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Workflow.Timeout)
	// Untouched sections keep their defaults.
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FUSIONCODER_LOG_LEVEL", "warn")
	t.Setenv("FUSIONCODER_CLOUD_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "secret", cfg.Cloud.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  max_size: 0\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "cache.max_size")

	path2 := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path2, []byte("bus:\n  embedded: false\n"), 0o644))

	_, err = Load(path2)
	assert.ErrorContains(t, err, "bus.url")
}
