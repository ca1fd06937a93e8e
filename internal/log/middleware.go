// SPDX-License-Identifier: MIT

package log

import (
	"net/http"
	"time"
)

// Middleware returns an HTTP middleware that logs each request with latency,
// status and correlation fields. It expects the request ID middleware to have
// run first so the ID is already present in the context.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lw, r)

			logger := WithComponentFromContext(r.Context(), "http")
			logger.Info().
				Str(FieldEvent, "http.request").
				Str("method", r.Method).
				Str(FieldPath, r.URL.Path).
				Int("status", lw.status).
				Int64("bytes", lw.bytes).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("request handled")
		})
	}
}

// loggingWriter wraps http.ResponseWriter to capture status and size.
type loggingWriter struct {
	http.ResponseWriter
	status  int
	bytes   int64
	written bool
}

func (w *loggingWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *loggingWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}
