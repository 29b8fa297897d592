package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"pinguard/internal/platform/logger"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"PINGUARD_ADDR" envDefault:":8080"`
	Environment     string        `env:"PINGUARD_ENV" envDefault:"development"`
	LogLevel        string        `env:"PINGUARD_LOG_LEVEL" envDefault:"info"`
	MaxBodyBytes    int64         `env:"PINGUARD_MAX_BODY_BYTES" envDefault:"4096"`
	ShutdownTimeout time.Duration `env:"PINGUARD_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// TrustProxyHeaders keys rate limits on X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `env:"PINGUARD_TRUST_PROXY_HEADERS" envDefault:"false"`

	Batch     BatchConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

// BatchConfig bounds the batch evaluation endpoint.
type BatchConfig struct {
	MaxItems    int `env:"PINGUARD_BATCH_MAX_ITEMS" envDefault:"20"`
	Concurrency int `env:"PINGUARD_BATCH_CONCURRENCY" envDefault:"4"`
}

// RateLimitConfig is the per-IP budget for evaluation endpoints.
type RateLimitConfig struct {
	Disabled bool          `env:"PINGUARD_RATELIMIT_DISABLED" envDefault:"false"`
	Limit    int           `env:"PINGUARD_RATELIMIT_LIMIT" envDefault:"30"`
	Window   time.Duration `env:"PINGUARD_RATELIMIT_WINDOW" envDefault:"1m"`
}

// RedisConfig configures the optional shared rate limit store. An empty URL
// keeps rate limit state in process memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Enabled reports whether a Redis URL is configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

func (s Server) Validate() error {
	var errs []error
	if s.Addr == "" {
		errs = append(errs, errors.New("PINGUARD_ADDR must not be empty"))
	}
	if _, ok := logger.LookupLevel(s.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("PINGUARD_LOG_LEVEL %q is not one of debug, info, warn, error", s.LogLevel))
	}
	if s.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("PINGUARD_MAX_BODY_BYTES must be positive"))
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("PINGUARD_SHUTDOWN_TIMEOUT must be positive"))
	}
	if s.Batch.MaxItems <= 0 {
		errs = append(errs, errors.New("PINGUARD_BATCH_MAX_ITEMS must be positive"))
	}
	if s.Batch.Concurrency <= 0 {
		errs = append(errs, errors.New("PINGUARD_BATCH_CONCURRENCY must be positive"))
	}
	if !s.RateLimit.Disabled {
		if s.RateLimit.Limit <= 0 {
			errs = append(errs, errors.New("PINGUARD_RATELIMIT_LIMIT must be positive"))
		}
		if s.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("PINGUARD_RATELIMIT_WINDOW must be positive"))
		}
	}
	if s.Redis.Enabled() && s.Redis.PoolSize <= 0 {
		errs = append(errs, errors.New("REDIS_POOL_SIZE must be positive"))
	}
	return errors.Join(errs...)
}
