package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	mpinhandler "pinguard/internal/mpin/handler"
	mpinmetrics "pinguard/internal/mpin/metrics"
	mpinservice "pinguard/internal/mpin/service"
	"pinguard/internal/platform/config"
	"pinguard/internal/platform/httpserver"
	"pinguard/internal/platform/logger"
	platformmetrics "pinguard/internal/platform/metrics"
	"pinguard/internal/platform/redis"
	rlmetrics "pinguard/internal/ratelimit/metrics"
	rlmw "pinguard/internal/ratelimit/middleware"
	rlmodels "pinguard/internal/ratelimit/models"
	"pinguard/internal/ratelimit/store/bucket"
	httptransport "pinguard/internal/transport/http"
	"pinguard/pkg/platform/circuit"
)

// readLimitMultiplier scales the evaluate budget for the read-only catalog.
const readLimitMultiplier = 4

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.IsProduction(), cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	registry := platformmetrics.New()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	var (
		store  rlmw.BucketStore = bucket.NewInMemoryBucketStore()
		health httptransport.HealthChecker
	)
	if redisClient != nil {
		defer redisClient.Close()
		store = bucket.NewFallbackStore(
			bucket.NewRedisBucketStore(redisClient),
			circuit.New("ratelimit-redis"),
			log,
		)
		health = redisClient
		log.Info("rate limit store", "backend", "redis")
	} else {
		log.Info("rate limit store", "backend", "memory")
	}

	limiter := rlmw.New(store, log,
		rlmw.WithDisabled(cfg.RateLimit.Disabled),
		rlmw.WithMetrics(rlmetrics.New(registry.Registerer())),
		rlmw.WithLimit(rlmodels.ClassEvaluate, cfg.RateLimit.Limit, cfg.RateLimit.Window),
		rlmw.WithLimit(rlmodels.ClassRead, cfg.RateLimit.Limit*readLimitMultiplier, cfg.RateLimit.Window),
	)

	svc := mpinservice.New(
		mpinservice.WithLogger(log),
		mpinservice.WithMetrics(mpinmetrics.New(registry.Registerer())),
		mpinservice.WithBatchLimits(cfg.Batch.MaxItems, cfg.Batch.Concurrency),
	)

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:       log,
		MPIN:         mpinhandler.New(svc, log),
		RateLimiter:  limiter,
		Metrics:      registry,
		Redis:        health,
		MaxBodyBytes: cfg.MaxBodyBytes,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting pinguard", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
