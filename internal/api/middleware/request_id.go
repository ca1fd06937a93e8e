// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ManuGH/vt2g/internal/log"
)

// HeaderRequestID carries the correlation ID between client and server.
const HeaderRequestID = "X-Request-ID"

// RequestID attaches a correlation ID to every request, reusing the client's
// if it sent one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)
		ctx := log.ContextWithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
