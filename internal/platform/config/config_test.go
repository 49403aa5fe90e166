package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("REVIEWD_CONFIG", "")
	t.Setenv("REVIEWD_ADDR", ":9090")
	t.Setenv("STORE_BACKEND", BackendRedis)
	t.Setenv("IDENTITY_WAIT_TIMEOUT", "250ms")
	t.Setenv("STORE_FAILURE_THRESHOLD", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Identity.WaitTimeout)
	assert.Equal(t, 5, cfg.Store.FailureThreshold, "unparseable values keep the default")
	assert.Equal(t, 5*time.Second, cfg.Preferences.GracePeriod)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviewd.toml")
	body := `
addr = ":7000"
log_level = "debug"

[store]
backend = "postgres"

[preferences]
grace_period = "750ms"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("REVIEWD_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, "warn", cfg.LogLevel, "env overrides file")
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.Preferences.GracePeriod)
	assert.Equal(t, 2*time.Second, cfg.Identity.WaitTimeout)
}

func TestLoadFileMissing(t *testing.T) {
	t.Setenv("REVIEWD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	_, err := Load()
	require.Error(t, err)
}
