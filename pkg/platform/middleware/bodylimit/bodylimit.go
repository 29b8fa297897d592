// Package bodylimit caps request body sizes before handlers decode them.
package bodylimit

import "net/http"

// Middleware wraps the request body in http.MaxBytesReader. A non-positive
// limit disables the cap.
func Middleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
