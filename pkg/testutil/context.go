package testutil

import (
	"net/http"
	"time"

	"pinguard/pkg/requestcontext"
)

// WithClientIP sets the client metadata the metadata middleware would set.
func WithClientIP(req *http.Request, ip string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, req.UserAgent())
	return req.WithContext(ctx)
}

// WithRequestTime pins the request time so evaluated_at is deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
