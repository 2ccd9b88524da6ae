package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "https://api.aimlapi.com", cfg.AIMLAPIBaseURL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, 10, cfg.PollInterval)
	assert.Equal(t, 30, cfg.MaxPollTries)
	assert.Equal(t, "127.0.0.1:8090", cfg.ServerAddr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AIMLAPI_BASE_URL", "http://localhost:9999")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MAX_POLL_ATTEMPTS", "7")
	t.Setenv("MINIO_USE_SSL", "false")

	cfg := Load()
	assert.Equal(t, "http://localhost:9999", cfg.AIMLAPIBaseURL)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 7, cfg.MaxPollTries)
	assert.False(t, cfg.MinioUseSSL)
}

func TestGetEnvIntBadValue(t *testing.T) {
	t.Setenv("MAX_POLL_ATTEMPTS", "lots")

	cfg := Load()
	assert.Equal(t, 30, cfg.MaxPollTries)
}
