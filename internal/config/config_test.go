package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewConfig_LoadsFromFile(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: "8080"
  admin_email: "admin@example.com"
  log_level: "info"
database:
  url: "postgres://localhost/civic_test"
  max_open_conns: 10
email:
  enabled: false
`)
	t.Setenv("CIVICAPP_CONFIG_FILE", path)

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "admin@example.com", cfg.Server.AdminEmail)
	assert.Equal(t, "postgres://localhost/civic_test", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Email.Enabled)
}

func TestNewConfig_EnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: "8080"
database:
  url: "postgres://localhost/civic_test"
`)
	t.Setenv("CIVICAPP_CONFIG_FILE", path)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://override/civic")
	t.Setenv("SERVER_DEBUG", "true")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres://override/civic", cfg.Database.URL)
	assert.True(t, cfg.Server.Debug)
}

func TestNewConfig_CORSOriginsFromEnv(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: "8080"
`)
	t.Setenv("CIVICAPP_CONFIG_FILE", path)
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
}

func TestNewConfig_MissingFile(t *testing.T) {
	t.Setenv("CIVICAPP_CONFIG_FILE", "/nonexistent/config.yaml")

	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfig_NestedSMTPOverride(t *testing.T) {
	path := writeTempConfig(t, `
email:
  enabled: true
  smtp:
    host: "smtp.example.com"
    port: 587
`)
	t.Setenv("CIVICAPP_CONFIG_FILE", path)
	t.Setenv("EMAIL_SMTP_HOST", "smtp.override.com")
	t.Setenv("EMAIL_SMTP_PORT", "2525")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "smtp.override.com", cfg.Email.SMTP.Host)
	assert.Equal(t, 2525, cfg.Email.SMTP.Port)
}
