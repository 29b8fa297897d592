package handler

import (
	"time"

	"pinguard/internal/mpin"
	"pinguard/internal/mpin/service"
)

// EvaluateResponse is the HTTP response for POST /mpin/evaluate.
type EvaluateResponse struct {
	MPINLength   int       `json:"mpin_length"`
	Strength     string    `json:"strength"`
	Reasons      []string  `json:"reasons"`
	Descriptions []string  `json:"descriptions"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// BatchItemResponse is one candidate's outcome in a batch response.
type BatchItemResponse struct {
	Index        int      `json:"index"`
	MPINLength   int      `json:"mpin_length"`
	Strength     string   `json:"strength"`
	Reasons      []string `json:"reasons"`
	Descriptions []string `json:"descriptions"`
}

// BatchResponse is the HTTP response for POST /mpin/evaluate/batch.
type BatchResponse struct {
	Results []BatchItemResponse `json:"results"`
	Weak    int                 `json:"weak"`
	Strong  int                 `json:"strong"`
	Invalid int                 `json:"invalid"`
}

// ReasonResponse describes one reason in the catalog.
type ReasonResponse struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// ReasonsResponse is the HTTP response for GET /mpin/reasons.
type ReasonsResponse struct {
	Reasons []ReasonResponse `json:"reasons"`
}

// FromEvaluation converts a service Evaluation to an HTTP response.
func FromEvaluation(eval *service.Evaluation) *EvaluateResponse {
	return &EvaluateResponse{
		MPINLength:   eval.PINLength,
		Strength:     eval.Verdict.String(),
		Reasons:      reasonStrings(eval.Reasons),
		Descriptions: eval.Descriptions(),
		EvaluatedAt:  eval.EvaluatedAt,
	}
}

// FromBatchResult converts a service BatchResult to an HTTP response.
func FromBatchResult(result *service.BatchResult) *BatchResponse {
	items := make([]BatchItemResponse, len(result.Results))
	for i, eval := range result.Results {
		items[i] = BatchItemResponse{
			Index:        i,
			MPINLength:   eval.PINLength,
			Strength:     eval.Verdict.String(),
			Reasons:      reasonStrings(eval.Reasons),
			Descriptions: eval.Descriptions(),
		}
	}
	return &BatchResponse{
		Results: items,
		Weak:    result.Weak,
		Strong:  result.Strong,
		Invalid: result.Invalid,
	}
}

// NewReasonsResponse builds the reason catalog.
func NewReasonsResponse(reasons []mpin.Reason) *ReasonsResponse {
	out := make([]ReasonResponse, len(reasons))
	for i, r := range reasons {
		out[i] = ReasonResponse{Reason: r.String(), Description: r.Description()}
	}
	return &ReasonsResponse{Reasons: out}
}

func reasonStrings(reasons []mpin.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.String()
	}
	return out
}
