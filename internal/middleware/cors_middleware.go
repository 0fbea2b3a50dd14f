package middleware

import (
	"net/http"
	"slices"
	"strconv"
)

// Browsers cache a successful preflight this many seconds before asking
// again.
const preflightMaxAgeSeconds = 600

// CORSMiddleware lets browser clients on the listed origins publish
// events and hold SSE subscriptions open cross-origin. The allowed
// request headers cover Content-Type for JSON bodies, X-Request-ID for
// publish correlation and Last-Event-ID for reconnecting EventSource
// clients.
func CORSMiddleware(allowedOrigins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always vary on Origin so a shared cache never replays one
			// origin's grant to another.
			w.Header().Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(allowedOrigins, origin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, Last-Event-ID")
				h.Set("Access-Control-Max-Age", strconv.Itoa(preflightMaxAgeSeconds))
			}

			// Preflights end here and never reach a handler.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
