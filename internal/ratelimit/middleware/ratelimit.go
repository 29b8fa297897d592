package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pinguard/internal/ratelimit/metrics"
	"pinguard/internal/ratelimit/models"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/platform/httputil"
	"pinguard/pkg/requestcontext"
)

// BucketStore is the sliding-window storage the middleware consults.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// Limit is the request budget for one endpoint class.
type Limit struct {
	Requests int
	Window   time.Duration
}

const (
	defaultLimit  = 30
	defaultWindow = time.Minute
)

type Middleware struct {
	store    BucketStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	limits   map[models.EndpointClass]Limit
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// WithLimit overrides the budget for class. Unknown classes and non-positive
// values are ignored.
func WithLimit(class models.EndpointClass, requests int, window time.Duration) Option {
	return func(m *Middleware) {
		if !class.IsValid() || requests <= 0 || window <= 0 {
			return
		}
		m.limits[class] = Limit{Requests: requests, Window: window}
	}
}

func New(store BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		logger: logger,
		limits: map[models.EndpointClass]Limit{
			models.ClassEvaluate: {Requests: defaultLimit, Window: defaultWindow},
			models.ClassRead:     {Requests: defaultLimit * 4, Window: defaultWindow},
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	} else {
		for class, l := range m.limits {
			logger.Info("rate limit configured",
				"class", class.String(),
				"limit", l.Requests,
				"window_seconds", models.WindowSeconds(l.Window),
			)
		}
	}
	return m
}

// RateLimit limits requests per client IP for the endpoint class. Store
// failures let the request through. It panics on an unknown class, which is a
// wiring mistake caught when routes are mounted.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	if !class.IsValid() {
		panic(fmt.Sprintf("ratelimit: unknown endpoint class %q", class))
	}
	limit := m.limits[class]
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.store.Allow(ctx, models.BucketKey(class, ip), limit.Requests, limit.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", class.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				m.metrics.IncrementStoreErrors(class.String())
				next.ServeHTTP(w, r)
				return
			}

			// Add headers regardless of outcome
			addRateLimitHeaders(w, result)

			if !result.Allowed {
				m.metrics.IncrementDenied(class.String())
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class.String(),
					"retry_after", result.RetryAfter,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}

			m.metrics.IncrementAllowed(class.String())
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimitExceeded,
		"too many requests from this client, retry later"))
}
