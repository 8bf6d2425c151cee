package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
pipeline:
  input_root: /data/results
  variant: discrete
log:
  level: debug
writers:
  - type: gob
    enabled: true
    gob:
      root_path: /data/snapshots
  - type: clickhouse
    enabled: false
    clickhouse:
      host: localhost
      port: 9000
      database: default
      table: tcp_samples
notify:
  smtp:
    host: smtp.example.org
    port: 587
    to: ops@example.org
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "/data/results", cfg.Pipeline.InputRoot)
	assert.Equal(t, "discrete", cfg.Pipeline.Variant)
	// Unset keys keep their defaults.
	assert.Equal(t, "combined_results.csv", cfg.Pipeline.OutputPath)
	assert.Equal(t, "abort", cfg.Pipeline.IntervalPolicy)
	assert.Equal(t, "debug", cfg.Log.Level)

	require.Len(t, cfg.Writers, 2)
	assert.Equal(t, "gob", cfg.Writers[0].Type)
	assert.True(t, cfg.Writers[0].Enabled)
	assert.Equal(t, "/data/snapshots", cfg.Writers[0].Gob.RootPath)
	assert.Equal(t, 9000, cfg.Writers[1].ClickHouse.Port)
	assert.Equal(t, 587, cfg.Notify.SMTP.Port)
	assert.Equal(t, ":8080", cfg.API.ListenAddr)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FLAVORSPECTRA_VARIANT", "combined")
	t.Setenv("FLAVORSPECTRA_OUTPUT_PATH", "/tmp/out.csv")
	t.Setenv("FLAVORSPECTRA_LOG_JSON", "true")

	cfg, err := LoadConfig(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "combined", cfg.Pipeline.Variant)
	assert.Equal(t, "/tmp/out.csv", cfg.Pipeline.OutputPath)
	assert.Equal(t, "/data/results", cfg.Pipeline.InputRoot)
	assert.True(t, cfg.Log.JSON)
}

func TestApplyEnv_IgnoresUnprefixedNames(t *testing.T) {
	t.Setenv("VARIANT", "discrete")
	t.Setenv("INPUT_ROOT", "/elsewhere")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LEVEL", "error")
	t.Setenv("FLAVORSPECTRA_LOG_LEVEL", "warn")
	t.Setenv("FLAVORSPECTRA_INTERVAL_POLICY", "skip")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, "combined", cfg.Pipeline.Variant)
	assert.Equal(t, "results", cfg.Pipeline.InputRoot)
	assert.Equal(t, "skip", cfg.Pipeline.IntervalPolicy)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, "pipeline: [unterminated"))
	assert.ErrorContains(t, err, "failed to unmarshal config YAML")
}

func TestLoadConfig_ShippedExample(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default().Pipeline, cfg.Pipeline)
	require.Len(t, cfg.Writers, 4)
	for _, def := range cfg.Writers {
		assert.False(t, def.Enabled, def.Type)
	}
	assert.Equal(t, int64(4), cfg.Writers[1].Parquet.Parallelism)
	assert.Equal(t, "flavorspectra.samples", cfg.Writers[3].NATS.Subject)
}
