// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// Tracing wraps handlers with OpenTelemetry HTTP instrumentation. Probe and
// metrics endpoints are excluded to keep the trace stream useful.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(
			next,
			serviceName,
			otelhttp.WithTracerProvider(otel.GetTracerProvider()),
			otelhttp.WithFilter(shouldTrace),
			otelhttp.WithSpanNameFormatter(spanName),
		)
	}
}

func shouldTrace(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return false
	}
	return true
}

func spanName(operation string, r *http.Request) string {
	return operation + " " + r.Method + " " + r.URL.Path
}
