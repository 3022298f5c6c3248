// Package requesttime provides middleware for request-scoped time.
// All operations within a single check-in use the same "now", so the participant
// and team timestamps written by one request are identical.
package requesttime

import (
	"net/http"
	"time"

	"regdesk/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
