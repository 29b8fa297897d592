package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pinguard/internal/mpin"
	"pinguard/internal/mpin/service"
	"pinguard/pkg/platform/httputil"
	"pinguard/pkg/requestcontext"
)

// Service defines the evaluation operations the handler depends on.
type Service interface {
	Evaluate(ctx context.Context, req service.EvaluateRequest) (*service.Evaluation, error)
	EvaluateBatch(ctx context.Context, req service.BatchRequest) (*service.BatchResult, error)
}

// Handler wires MPIN endpoints to the evaluation service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an MPIN handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts MPIN endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	h.RegisterEvaluation(r)
	h.RegisterCatalog(r)
}

// RegisterEvaluation mounts the endpoints that evaluate candidate MPINs.
func (h *Handler) RegisterEvaluation(r chi.Router) {
	r.Post("/mpin/evaluate", h.HandleEvaluate)
	r.Post("/mpin/evaluate/batch", h.HandleEvaluateBatch)
}

// RegisterCatalog mounts read-only endpoints.
func (h *Handler) RegisterCatalog(r chi.Router) {
	r.Get("/mpin/reasons", h.HandleReasons)
}

// HandleEvaluate handles POST /mpin/evaluate. An INVALID verdict is a normal
// 200 response.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	eval, err := h.service.Evaluate(ctx, service.EvaluateRequest{
		MPIN:  *req.MPIN,
		Dates: req.Dates(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "mpin evaluation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	// The MPIN and the dates themselves are never logged.
	h.logger.InfoContext(ctx, "mpin evaluated",
		"request_id", requestID,
		"mpin_length", eval.PINLength,
		"strength", eval.Verdict,
		"reasons", eval.Reasons,
		"dates_supplied", req.Dates().Supplied(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromEvaluation(eval))
}

// HandleEvaluateBatch handles POST /mpin/evaluate/batch.
func (h *Handler) HandleEvaluateBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.EvaluateBatch(ctx, service.BatchRequest{
		Candidates: req.Candidates,
		Dates:      req.Dates(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "mpin batch evaluation failed",
			"request_id", requestID,
			"batch_size", len(req.Candidates),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "mpin batch evaluated",
		"request_id", requestID,
		"batch_size", len(result.Results),
		"weak", result.Weak,
		"strong", result.Strong,
		"invalid", result.Invalid,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromBatchResult(result))
}

// HandleReasons handles GET /mpin/reasons.
func (h *Handler) HandleReasons(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, NewReasonsResponse(mpin.AllReasons()))
}
