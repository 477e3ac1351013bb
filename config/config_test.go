package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 1000, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 2000, cfg.RateLimit.InstallationMaxRequests)
	assert.Equal(t, 3600, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, "^[a-zA-Z0-9_-]{1,64}$", cfg.Validation.ActionNamePattern)
	assert.False(t, cfg.Retention.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
database:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/telemetry"
rate_limit:
  enabled: true
  max_requests: 50
  window_seconds: 120
retention:
  enabled: true
  days: 30
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 50, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 120, cfg.RateLimit.WindowSeconds)
	assert.True(t, cfg.Retention.Enabled)
	assert.Equal(t, 30, cfg.Retention.Days)

	// 파일에 없는 값은 기본값 유지
	assert.Equal(t, "^[a-zA-Z0-9_-]{1,64}$", cfg.Validation.ActionNamePattern)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEMETRY_ADDR", ":7070")
	t.Setenv("TELEMETRY_DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TELEMETRY_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "env-secret", cfg.Dashboard.JWTSecret)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "postgres"
	assert.Error(t, cfg.validate())

	cfg = Default()
	cfg.RateLimit.WindowSeconds = 0
	assert.Error(t, cfg.validate())

	cfg = Default()
	cfg.RateLimit.CleanupProbability = 1.5
	assert.Error(t, cfg.validate())

	cfg = Default()
	cfg.Validation.MaxActionLength = 0
	assert.Error(t, cfg.validate())
}
