// Package requestid assigns every request an identifier that is echoed back
// in the X-Request-ID header and made available through requestcontext.
package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"pinguard/pkg/requestcontext"
)

// Header is the header used to propagate request IDs.
const Header = "X-Request-ID"

var validID = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// Middleware keeps a well-formed incoming request ID and generates a UUID otherwise.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(Header)
		if !validID.MatchString(rid) {
			rid = uuid.NewString()
		}
		w.Header().Set(Header, rid)
		ctx := requestcontext.WithRequestID(r.Context(), rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
