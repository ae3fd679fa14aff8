package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "friendzone_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromPath_MinimalConfigGetsDefaults(t *testing.T) {
	path := writeConfig(t, "databaseURL: postgres://localhost:5432/friendzone\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/friendzone", cfg.DatabaseURL)
	assert.Equal(t, DefaultHorizonDays, cfg.Calendar.HorizonDays)
	assert.Equal(t, DefaultMaxConcurrentFetches, cfg.Calendar.MaxConcurrentFetches)
	assert.Equal(t, DefaultOverlapCapHours, cfg.Matching.OverlapCapHours)
}

func TestLoadFromPath_FullConfig(t *testing.T) {
	path := writeConfig(t, `databaseURL: postgres://localhost:5432/friendzone
matching:
  overlapCapHours: 10
  defaultPreset: schedule-first
calendar:
  horizonDays: 7
  maxConcurrentFetches: 4
metricsAddr: localhost:9091
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Matching.OverlapCapHours)
	assert.Equal(t, "schedule-first", cfg.Matching.DefaultPreset)
	assert.Equal(t, 7, cfg.Calendar.HorizonDays)
	assert.Equal(t, 4, cfg.Calendar.MaxConcurrentFetches)
	assert.Equal(t, "localhost:9091", cfg.MetricsAddr)
}

func TestLoadFromPath_MissingDatabaseURL(t *testing.T) {
	path := writeConfig(t, "metricsAddr: localhost:9091\n")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_UnknownPresetRejected(t *testing.T) {
	path := writeConfig(t, `databaseURL: postgres://localhost:5432/friendzone
matching:
  defaultPreset: fastest
`)

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "databaseURL: [unclosed\n")

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/friendzone_config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
