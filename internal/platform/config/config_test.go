package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(4096), cfg.MaxBodyBytes)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20, cfg.Batch.MaxItems)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Equal(t, 30, cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PINGUARD_ADDR", ":9090")
	t.Setenv("PINGUARD_ENV", "production")
	t.Setenv("PINGUARD_LOG_LEVEL", "warn")
	t.Setenv("PINGUARD_BATCH_MAX_ITEMS", "50")
	t.Setenv("PINGUARD_RATELIMIT_WINDOW", "30s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_POOL_SIZE", "25")
	t.Setenv("PINGUARD_TRUST_PROXY_HEADERS", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 50, cfg.Batch.MaxItems)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 25, cfg.Redis.PoolSize)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("PINGUARD_BATCH_MAX_ITEMS", "many")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Server {
		return Server{
			Addr:            ":8080",
			LogLevel:        "info",
			MaxBodyBytes:    4096,
			ShutdownTimeout: time.Second,
			Batch:           BatchConfig{MaxItems: 20, Concurrency: 4},
			RateLimit:       RateLimitConfig{Limit: 30, Window: time.Minute},
		}
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("unknown log level", func(t *testing.T) {
		cfg := valid()
		cfg.LogLevel = "verbose"
		assert.ErrorContains(t, cfg.Validate(), "PINGUARD_LOG_LEVEL")
	})

	t.Run("log level names are case-insensitive", func(t *testing.T) {
		for _, level := range []string{"WARN", "Warning", "DEBUG", " error "} {
			cfg := valid()
			cfg.LogLevel = level
			assert.NoError(t, cfg.Validate(), "level %q", level)
		}
	})

	t.Run("zero batch limits", func(t *testing.T) {
		cfg := valid()
		cfg.Batch = BatchConfig{}
		err := cfg.Validate()
		assert.ErrorContains(t, err, "PINGUARD_BATCH_MAX_ITEMS")
		assert.ErrorContains(t, err, "PINGUARD_BATCH_CONCURRENCY")
	})

	t.Run("rate limit values ignored when disabled", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit = RateLimitConfig{Disabled: true}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("redis pool size checked when enabled", func(t *testing.T) {
		cfg := valid()
		cfg.Redis = RedisConfig{URL: "redis://localhost:6379"}
		assert.ErrorContains(t, cfg.Validate(), "REDIS_POOL_SIZE")
	})
}
