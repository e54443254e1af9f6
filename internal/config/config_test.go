package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8008", cfg.ListenAddr)
	require.True(t, cfg.RequireAuth)
	require.Equal(t, Duration(24*time.Hour), cfg.JWT.TTL)
	require.Equal(t, "project-management-api", cfg.JWT.Issuer)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
listen_addr: ":9090"
database_path: "test.db"
jwt:
  secret: "file-secret"
  ttl: 1h
require_auth: false
cors_origins:
  - "https://app.example.com"
log_level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, "test.db", cfg.DatabasePath)
	require.Equal(t, "file-secret", cfg.JWT.Secret)
	require.Equal(t, Duration(time.Hour), cfg.JWT.TTL)
	require.False(t, cfg.RequireAuth)
	require.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
	require.Equal(t, "debug", cfg.LogLevel)

	// Fields absent from the file keep their defaults.
	require.Equal(t, "project-management-api", cfg.JWT.Issuer)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`listen_addr: ":9090"`), 0o644))

	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REQUIRE_AUTH", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.ListenAddr)
	require.Equal(t, "env-secret", cfg.JWT.Secret)
	require.False(t, cfg.RequireAuth)
}

func TestLoad_InvalidTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt:\n  ttl: -5m\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
