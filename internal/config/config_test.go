package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 3, cfg.Materializer.DefaultSets)
	assert.Equal(t, "10", cfg.Materializer.DefaultReps)
	assert.Equal(t, 60, cfg.Materializer.DefaultRestSeconds)
	assert.Equal(t, "auto", cfg.Completions.ColumnsMode)
	assert.Equal(t, 10*time.Minute, cfg.Completions.ProbeTTL)
	assert.Equal(t, "sunday", cfg.Stats.WeekStart)
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
database:
  driver: memory
completions:
  columns_mode: minimal
jwt:
  secret: from-file
  expiration: 30m
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "minimal", cfg.Completions.ColumnsMode)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
}
