// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
)

// CORS sets Cross-Origin Resource Sharing headers against a strict allowed
// origins list. An empty list allows common localhost development origins;
// "*" in the list allows everything.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	if len(allowedOrigins) == 0 {
		allowed["http://localhost:8080"] = true
		allowed["http://127.0.0.1:8080"] = true
	}
	allowAll := allowed["*"]

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin == "":
				// Non-browser clients; same-origin policy does not apply.
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowAll || allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			// Disallowed origins get no header; the browser blocks the response.

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, Authorization")
			w.Header().Set("Access-Control-Max-Age", "600")
			w.Header().Set("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
