package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavechat-ai/wavechat-server/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "wavechat", cfg.MongoDatabase)
	assert.Equal(t, "openrouter", cfg.LLMProvider)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("MONGODB_DATABASE", "wavechat_test")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9001", cfg.ServerPort)
	assert.Equal(t, "wavechat_test", cfg.MongoDatabase)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoadYAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server_port: \"7000\"\nmongo_database: from_file\nlog_level: debug\n",
	), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MONGODB_DATABASE", "from_env")

	cfg, err := config.Load()
	require.NoError(t, err)

	// Env wins over the file; the file wins over defaults.
	assert.Equal(t, "from_env", cfg.MongoDatabase)
	assert.Equal(t, "7000", cfg.ServerPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadIgnoresMalformedEnvNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.RateLimitRequests)
}
