// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"

	"github.com/ManuGH/vt2g/internal/log"
)

// Recoverer keeps panics inside downstream handlers from crashing the
// process. The panic is logged with its stack and answered with a 500.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				buf := make([]byte, 8192)
				n := runtime.Stack(buf, false)

				reqID := log.RequestIDFromContext(r.Context())
				logger := log.WithComponentFromContext(r.Context(), "panic-recovery")
				logger.Error().
					Str(log.FieldEvent, "panic.recovered").
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str(log.FieldRequestID, reqID).
					Interface("panic_value", rec).
					Str("stack_trace", string(buf[:n])).
					Msg("panic recovered in HTTP handler")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error":      "internal server error",
					"request_id": reqID,
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
