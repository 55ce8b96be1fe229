// Package middleware provides server-level HTTP middleware.
package middleware

import (
	"net/http"
	"strings"
)

// CorsMiddleware wraps a handler with cross-origin response headers. With no
// allowed origins configured, any origin is allowed, which suits a public
// read-only estimation endpoint.
func CorsMiddleware(allowedOrigins []string, handler http.Handler) http.Handler {
	allowed := "*"
	if len(allowedOrigins) > 0 {
		allowed = strings.Join(allowedOrigins, ", ")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowed)

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		handler.ServeHTTP(w, r)
	})
}
