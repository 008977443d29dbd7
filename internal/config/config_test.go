package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "REDIS_URL", "JWT_SECRET", "TOKEN_TTL", "PORT", "WEBHOOK_SECRET",
		"LOG_LEVEL", "LOG_FORMAT", "RECONCILE_INTERVAL", "PRESENCE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 45*time.Second, cfg.PresenceTTL)
	assert.Error(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite:vbase.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("RECONCILE_INTERVAL", "10s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ReconcileInterval)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRESENCE_TTL", "soon")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "PRESENCE_TTL")

	t.Setenv("PRESENCE_TTL", "-1s")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "positive")
}

func TestLoadEnvFilesExplicit(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nPORT=7000\n"), 0o600))
	t.Setenv("PORT", "6000")

	os.Unsetenv("JWT_SECRET")
	LoadEnvFiles(path)
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

	assert.Equal(t, "from-file", os.Getenv("JWT_SECRET"))
	assert.Equal(t, "6000", os.Getenv("PORT"))
}
