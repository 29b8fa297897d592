package bucket

import (
	"context"
	"log/slog"
	"time"

	"pinguard/internal/ratelimit/models"
	"pinguard/pkg/platform/circuit"
)

// Store is the bucket store contract shared by the memory and Redis backends.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// PrimaryStore is a Store that can also be read without consuming a slot.
// FallbackStore uses the read to check recovery while its circuit is open.
type PrimaryStore interface {
	Store
	GetCurrentCount(ctx context.Context, key string) (int, error)
}

// FallbackStore consults primary and switches to an in-memory fallback while
// primary keeps failing. Limits are per replica while the circuit is open.
type FallbackStore struct {
	primary  PrimaryStore
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

// NewFallbackStore wraps primary with an in-memory fallback guarded by breaker.
func NewFallbackStore(primary PrimaryStore, breaker *circuit.Breaker, logger *slog.Logger) *FallbackStore {
	return &FallbackStore{
		primary:  primary,
		fallback: NewInMemoryBucketStore(),
		breaker:  breaker,
		logger:   logger,
	}
}

// Allow checks primary first. Errors before the circuit opens are returned
// so the caller can decide how to degrade. While the circuit is open each
// request is charged to the fallback only; primary is read, not written,
// until enough reads succeed to close the circuit.
func (s *FallbackStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if s.breaker.IsOpen() {
		return s.allowWhileOpen(ctx, key, limit, window)
	}
	return s.allowPrimary(ctx, key, limit, window)
}

func (s *FallbackStore) allowPrimary(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	result, err := s.primary.Allow(ctx, key, limit, window)
	if err != nil {
		useFallback, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.WarnContext(ctx, "rate limit store circuit opened, using in-memory fallback",
				"breaker", s.breaker.Name(),
				"error", err,
			)
		}
		if useFallback {
			return s.fallback.Allow(ctx, key, limit, window)
		}
		return nil, err
	}
	s.breaker.RecordSuccess()
	return result, nil
}

func (s *FallbackStore) allowWhileOpen(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	if _, err := s.primary.GetCurrentCount(ctx, key); err != nil {
		s.breaker.RecordFailure()
		return s.fallback.Allow(ctx, key, limit, window)
	}

	usePrimary, change := s.breaker.RecordSuccess()
	if !usePrimary {
		return s.fallback.Allow(ctx, key, limit, window)
	}
	if change.Closed {
		s.logger.InfoContext(ctx, "rate limit store circuit closed", "breaker", s.breaker.Name())
	}
	return s.allowPrimary(ctx, key, limit, window)
}
