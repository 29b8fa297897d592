package metadata

import (
	"net"
	"net/http"
	"strings"

	"pinguard/pkg/requestcontext"
)

// ClientMetadata returns middleware that extracts the client IP address and
// User-Agent from the request and stores them in the context. Apply it before
// rate limiting.
//
// trustProxyHeaders must only be enabled when the service sits behind a proxy
// that overwrites X-Forwarded-For and X-Real-IP; otherwise any client can pick
// its own rate limit key.
func ClientMetadata(trustProxyHeaders bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIPFromRequest(r, trustProxyHeaders)
			ctx := requestcontext.WithClientMetadata(r.Context(), ip, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest extracts the client IP from the request. Forwarding
// headers are consulted only when trustProxyHeaders is set.
func ClientIPFromRequest(r *http.Request, trustProxyHeaders bool) string {
	if trustProxyHeaders {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}

	if addr := r.RemoteAddr; addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}

	return "unknown"
}

func forwardedIP(r *http.Request) string {
	// X-Forwarded-For can hold "client, proxy1, proxy2"; the first entry is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}
