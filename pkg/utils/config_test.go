package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MANGASHELF_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.Equal(t, "mangashelf", cfg.Auth.JWTIssuer)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, ":7070", cfg.Sync.TCPAddr)
}

func TestLoadTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
addr = ":9090"

[auth]
jwt_secret = "file-secret"
jwt_ttl_hours = 2
`), 0o644))

	t.Setenv("MANGASHELF_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.App.Addr)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL())
	// untouched keys keep their defaults
	assert.Equal(t, "mangashelf", cfg.Auth.JWTIssuer)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[auth]
jwt_secret = "file-secret"
`), 0o644))

	t.Setenv("MANGASHELF_CONFIG", path)
	t.Setenv("MANGASHELF_JWT_SECRET", "env-secret")
	t.Setenv("MANGASHELF_JWT_TTL_HOURS", "48")
	t.Setenv("MANGASHELF_HTTP_ADDR", ":8181")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 48*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, ":8181", cfg.App.Addr)
}

func TestTokenTTLFallback(t *testing.T) {
	assert.Equal(t, 24*time.Hour, AuthConfig{JWTTTLHours: 0}.TokenTTL())
	assert.Equal(t, 24*time.Hour, AuthConfig{JWTTTLHours: -3}.TokenTTL())
	assert.Equal(t, time.Hour, AuthConfig{JWTTTLHours: 1}.TokenTTL())
}
