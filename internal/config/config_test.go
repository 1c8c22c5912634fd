package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/csrlens/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, used, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, used)

	d := model.DefaultConfig()
	assert.Equal(t, d.API.BaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 0, cfg.API.Retries)
	assert.Equal(t, 300*time.Millisecond, cfg.Dashboard.Debounce)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Contains(t, cfg.Cache.Dir, ".csrlens")
	assert.Contains(t, cfg.Store.Path, "csrlens.db")
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: http://csr.internal:9000
  timeout: 5s
  retries: 2
rate_limiting:
  hosts:
    - host: slow.csr.internal:9000
      requests_per_second: 0.5
      burst_size: 1
cache:
  enabled: false
  dir: /tmp/csr-cache
store:
  path: /tmp/csr.db
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "http://csr.internal:9000", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.Retries)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/csr-cache", cfg.Cache.Dir)
	assert.Equal(t, "/tmp/csr.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []model.HostRateConfig{
		{Host: "slow.csr.internal:9000", RequestsPerSecond: 0.5, BurstSize: 1},
	}, cfg.RateLimiting.Hosts)
	// untouched keys keep defaults
	assert.Equal(t, 5, cfg.RateLimiting.BurstSize)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CSRLENS_API_BASE_URL", "http://env-host:8000")
	t.Setenv("CSRLENS_LOG_LEVEL", "warn")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://env-host:8000", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(model.LogConfig{Level: "debug", Format: "json"}))
	require.NoError(t, InitLogger(model.LogConfig{Level: "info", Format: "console"}))

	err := InitLogger(model.LogConfig{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
