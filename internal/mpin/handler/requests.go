package handler

import (
	"strings"

	"pinguard/internal/mpin"
	dErrors "pinguard/pkg/domain-errors"
)

// EvaluateRequest is the HTTP request body for POST /mpin/evaluate.
// MPIN must be present; an empty or malformed value is still evaluated and
// reported as INVALID.
type EvaluateRequest struct {
	MPIN *string `json:"mpin"`
	DateFields
}

// BatchRequest is the HTTP request body for POST /mpin/evaluate/batch.
type BatchRequest struct {
	Candidates []string `json:"candidates"`
	DateFields
}

// DateFields are the optional personal dates, each YYYY-MM-DD.
type DateFields struct {
	DOB         string `json:"dob,omitempty"`
	SpouseDOB   string `json:"spouse_dob,omitempty"`
	Anniversary string `json:"anniversary,omitempty"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.MPIN == nil {
		return dErrors.New(dErrors.CodeValidation, "mpin is required")
	}
	r.normalize()
	return nil
}

// Validate validates the request. The upper bound on candidates is enforced
// by the service.
func (r *BatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Candidates) == 0 {
		return dErrors.New(dErrors.CodeValidation, "candidates must not be empty")
	}
	r.normalize()
	return nil
}

// normalize trims surrounding whitespace from the dates. The MPIN is left
// untouched so stray characters are reported as an invalid format.
func (d *DateFields) normalize() {
	d.DOB = strings.TrimSpace(d.DOB)
	d.SpouseDOB = strings.TrimSpace(d.SpouseDOB)
	d.Anniversary = strings.TrimSpace(d.Anniversary)
}

// Dates converts the request fields to classifier input.
func (d *DateFields) Dates() mpin.Dates {
	return mpin.Dates{
		Self:        d.DOB,
		Spouse:      d.SpouseDOB,
		Anniversary: d.Anniversary,
	}
}
