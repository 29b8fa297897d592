// Package service exposes MPIN evaluation to transports. It adds context
// handling, tracing, metrics and batch fan-out around the pure classifier in
// package mpin.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"pinguard/internal/mpin"
	"pinguard/internal/mpin/metrics"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/requestcontext"
)

const (
	defaultBatchMaxItems    = 20
	defaultBatchConcurrency = 4
	tracerName              = "pinguard/internal/mpin/service"
)

// EvaluateRequest is a single MPIN with its optional personal dates.
type EvaluateRequest struct {
	MPIN  string
	Dates mpin.Dates
}

// BatchRequest evaluates several candidate MPINs against the same dates.
type BatchRequest struct {
	Candidates []string
	Dates      mpin.Dates
}

// Evaluation is a classifier result stamped with request metadata.
type Evaluation struct {
	mpin.Result
	PINLength   int
	EvaluatedAt time.Time
}

// BatchResult holds one Evaluation per candidate, in input order, plus
// verdict totals.
type BatchResult struct {
	Results []Evaluation
	Weak    int
	Strong  int
	Invalid int
}

// Service evaluates MPINs.
type Service struct {
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	batchMaxItems    int
	batchConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithBatchLimits caps batch size and the number of candidates evaluated in
// parallel. Non-positive values keep the defaults.
func WithBatchLimits(maxItems, concurrency int) Option {
	return func(s *Service) {
		if maxItems > 0 {
			s.batchMaxItems = maxItems
		}
		if concurrency > 0 {
			s.batchConcurrency = concurrency
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		logger:           slog.Default(),
		tracer:           otel.Tracer(tracerName),
		batchMaxItems:    defaultBatchMaxItems,
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate classifies a single MPIN. An invalid format is a normal INVALID
// result, not an error; the only error is a cancelled context.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*Evaluation, error) {
	ctx, span := s.tracer.Start(ctx, "mpin.evaluate")
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "context done")
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "evaluation cancelled")
	}

	eval := s.evaluate(ctx, req.MPIN, req.Dates)
	span.SetAttributes(
		attribute.Int("mpin.length", eval.PINLength),
		attribute.String("mpin.verdict", eval.Verdict.String()),
		attribute.Int("mpin.reasons", len(eval.Reasons)),
		attribute.StringSlice("mpin.dates_supplied", req.Dates.Supplied()),
	)
	return &eval, nil
}

// EvaluateBatch classifies every candidate against the same dates. Candidates
// are evaluated concurrently; results keep the input order.
func (s *Service) EvaluateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "mpin.evaluate_batch")
	defer span.End()

	n := len(req.Candidates)
	span.SetAttributes(attribute.Int("mpin.batch_size", n))
	if n == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one candidate is required")
	}
	if n > s.batchMaxItems {
		return nil, dErrors.New(dErrors.CodeValidation, "too many candidates: maximum is "+strconv.Itoa(s.batchMaxItems))
	}
	s.metrics.ObserveBatchSize(n)

	results := make([]Evaluation, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, candidate := range req.Candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.evaluate(gctx, candidate, req.Dates)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, "batch cancelled")
		s.logger.WarnContext(ctx, "batch evaluation cancelled",
			"request_id", requestcontext.RequestID(ctx),
			"batch_size", n,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "batch evaluation cancelled")
	}

	out := &BatchResult{Results: results}
	for _, r := range results {
		switch r.Verdict {
		case mpin.VerdictWeak:
			out.Weak++
		case mpin.VerdictStrong:
			out.Strong++
		case mpin.VerdictInvalid:
			out.Invalid++
		}
	}
	return out, nil
}

func (s *Service) evaluate(ctx context.Context, pin string, dates mpin.Dates) Evaluation {
	start := time.Now()
	result := mpin.Evaluate(pin, dates)
	s.metrics.ObserveEvaluation(result.Verdict.String(), reasonStrings(result.Reasons), time.Since(start))

	return Evaluation{
		Result:      result,
		PINLength:   len(pin),
		EvaluatedAt: requestcontext.Now(ctx),
	}
}

func reasonStrings(reasons []mpin.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.String()
	}
	return out
}
