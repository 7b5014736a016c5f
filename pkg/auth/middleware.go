package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// MetricsHeader carries the scrape token of /metrics.
const MetricsHeader = "X-Metrics-Token"

// TokenMiddleware enforces a fixed token, sent either in header or as a
// bearer Authorization.
func TokenMiddleware(header, expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				http.Error(w, "token not configured", http.StatusUnauthorized)
				return
			}
			got := r.Header.Get(header)
			if got == "" {
				got = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
