package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"DATABASE_URL": "postgres://localhost/trips",
		"JWT_SECRET":   "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.False(t, cfg.Debug)
}

func TestFromEnvRequired(t *testing.T) {
	_, err := FromEnv(lookup(map[string]string{"JWT_SECRET": "x"}))
	assert.EqualError(t, err, "DATABASE_URL is required")

	_, err = FromEnv(lookup(map[string]string{"DATABASE_URL": "x"}))
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookup(map[string]string{
		"DATABASE_URL":    "postgres://localhost/trips",
		"JWT_SECRET":      "secret",
		"ALLOWED_ORIGINS": "https://a.example, https://b.example,",
		"WORKER_COUNT":    "8",
		"TOKEN_TTL":       "90m",
		"DEBUG":           "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.Debug)
}

func TestFromEnvRejectsBadNumbers(t *testing.T) {
	base := map[string]string{"DATABASE_URL": "x", "JWT_SECRET": "y"}

	for key, val := range map[string]string{
		"WORKER_COUNT":     "many",
		"BATCH_SIZE":       "-1",
		"TOKEN_TTL":        "forever",
		"MAX_UPLOAD_BYTES": "0",
	} {
		vars := map[string]string{key: val}
		for k, v := range base {
			vars[k] = v
		}
		_, err := FromEnv(lookup(vars))
		assert.Error(t, err, key)
	}
}

func TestToolFromEnvNeedsNoSecret(t *testing.T) {
	cfg, err := ToolFromEnv(lookup(map[string]string{"BATCH_SIZE": "500"}))
	require.NoError(t, err)

	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "./data/photos", cfg.PhotoRoot)

	_, err = ToolFromEnv(lookup(map[string]string{"WORKER_COUNT": "0"}))
	assert.Error(t, err)
}
