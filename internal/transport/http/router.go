package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pinguard/internal/platform/middleware"
	rlmodels "pinguard/internal/ratelimit/models"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/platform/httputil"
	"pinguard/pkg/platform/middleware/bodylimit"
	"pinguard/pkg/platform/middleware/metadata"
	"pinguard/pkg/platform/middleware/requestid"
	"pinguard/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

// MPINRoutes mounts the MPIN endpoints.
type MPINRoutes interface {
	RegisterEvaluation(r chi.Router)
	RegisterCatalog(r chi.Router)
}

// RateLimiter wraps routes of an endpoint class.
type RateLimiter interface {
	RateLimit(class rlmodels.EndpointClass) func(http.Handler) http.Handler
}

// HealthChecker reports the health of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// MetricsRegistry exposes the Prometheus endpoint and records request metrics.
type MetricsRegistry interface {
	middleware.RequestObserver
	Handler() http.Handler
}

// Dependencies is everything NewRouter wires. Redis is nil when the rate
// limiter keeps its state in memory.
type Dependencies struct {
	Logger       *slog.Logger
	MPIN         MPINRoutes
	RateLimiter  RateLimiter
	Metrics      MetricsRegistry
	Redis        HealthChecker
	MaxBodyBytes int64

	// TrustProxyHeaders lets X-Forwarded-For / X-Real-IP choose the client IP.
	TrustProxyHeaders bool
}

type healthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis"`
}

// NewRouter wires all public endpoints behind the shared middleware stack.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	var observer middleware.RequestObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}

	r.Use(requestid.Middleware)
	r.Use(metadata.ClientMetadata(deps.TrustProxyHeaders))
	r.Use(requesttime.Middleware)
	r.Use(middleware.AccessLog(deps.Logger, observer))
	r.Use(chimw.Recoverer)
	r.Use(bodylimit.Middleware(deps.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
	})

	r.Get("/healthz", healthHandler(deps.Redis, deps.Logger))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.RateLimit(rlmodels.ClassEvaluate))
		}
		deps.MPIN.RegisterEvaluation(r)
	})
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.RateLimit(rlmodels.ClassRead))
		}
		deps.MPIN.RegisterCatalog(r)
	})

	return r
}

func healthHandler(redis HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redis == nil {
			httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Redis: "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := redis.Health(ctx); err != nil {
			logger.WarnContext(ctx, "health check failed", "dependency", "redis", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Redis: "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Redis: "ok"})
	}
}
