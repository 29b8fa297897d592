package models

import (
	"strconv"
	"time"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassEvaluate: MPIN evaluation endpoints, a guessability oracle worth throttling.
	ClassEvaluate EndpointClass = "evaluate"
	// ClassRead: catalog and other read-only endpoints.
	ClassRead EndpointClass = "read"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassEvaluate, ClassRead:
		return true
	}
	return false
}

// String returns the string representation.
func (c EndpointClass) String() string {
	return string(c)
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RetryAfterSeconds computes a Retry-After value from ResetAt, at least 1.
func (r *RateLimitResult) RetryAfterSeconds(now time.Time) int {
	secs := int(r.ResetAt.Sub(now).Seconds() + 0.999)
	if secs < 1 {
		return 1
	}
	return secs
}

// BucketKey builds the store key for a client IP and endpoint class.
func BucketKey(class EndpointClass, ip string) string {
	return "pinguard:rl:" + class.String() + ":ip:" + SanitizeKeySegment(ip)
}

// WindowSeconds renders a window as whole seconds for logs and headers.
func WindowSeconds(window time.Duration) string {
	return strconv.Itoa(int(window.Seconds()))
}
