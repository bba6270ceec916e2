package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8, cfg.Core.ParallelLimit)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.API.InitialDelay)
	assert.Equal(t, 1.5, cfg.API.BackoffMultiplier)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Cache.Enabled)

	require.NoError(t, NewValidator().Validate(cfg))
}

func TestLoader_Load(t *testing.T) {
	path := writeConfig(t, `
core:
  parallel_limit: 4
api:
  base_url: https://tasks.internal.example.com
  max_retries: 5
  backoff_multiplier: 2.0
logging:
  level: debug
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Core.ParallelLimit)
	assert.Equal(t, "https://tasks.internal.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.MaxRetries)
	assert.Equal(t, 2.0, cfg.API.BackoffMultiplier)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Values absent from the file keep their defaults.
	assert.Equal(t, 250*time.Millisecond, cfg.API.InitialDelay)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
}

func TestLoader_LoadMissingFile(t *testing.T) {
	_, err := NewLoader(NewValidator()).Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoader_LoadOrDefault(t *testing.T) {
	cfg, err := NewLoader(NewValidator()).LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().API.MaxRetries, cfg.API.MaxRetries)
}

func TestLoader_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"parallel limit too small", "core:\n  parallel_limit: 0\n"},
		{"retries too small", "api:\n  max_retries: 0\n"},
		{"multiplier not above one", "api:\n  backoff_multiplier: 1.0\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"bad log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := NewLoader(NewValidator()).Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation")
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Core.ParallelLimit = 12
	cfg.Logging.Format = "json"

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := writeConfig(t, string(data))
	loaded, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Core.ParallelLimit, loaded.Core.ParallelLimit)
	assert.Equal(t, cfg.Logging.Format, loaded.Logging.Format)
	assert.Equal(t, cfg.API.BackoffMultiplier, loaded.API.BackoffMultiplier)
}

func TestAPIConfig_RetryPolicy(t *testing.T) {
	cfg := DefaultConfig()
	policy := cfg.API.RetryPolicy()

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, policy.InitialDelay)
	assert.Equal(t, 1.5, policy.Multiplier)
	require.NotNil(t, policy.RetryIf)
}
