// SPDX-License-Identifier: MIT

// Package middleware provides the HTTP ingress middleware of the API server.
package middleware

import (
	"github.com/go-chi/chi/v5"

	vtlog "github.com/ManuGH/vt2g/internal/log"
)

// StackConfig configures the canonical ingress middleware stack.
type StackConfig struct {
	// CORS
	EnableCORS     bool
	AllowedOrigins []string

	// Security headers
	EnableSecurityHeaders bool
	CSP                   string

	// Observability
	EnableMetrics  bool
	TracingService string // empty disables tracing
	EnableLogging  bool

	// Rate limiting
	RateLimitRPM int // requests per minute per IP, 0 disables
}

// NewRouter constructs a chi router with the canonical stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the canonical middleware stack to r. Order matters:
// recovery outermost, correlation before anything that logs, rate limiting
// innermost so rejected requests are still observed.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(Recoverer)
	r.Use(RequestID)
	if cfg.EnableCORS {
		r.Use(CORS(cfg.AllowedOrigins))
	}
	if cfg.EnableSecurityHeaders {
		r.Use(SecurityHeaders(cfg.CSP))
	}
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	if cfg.TracingService != "" {
		r.Use(Tracing(cfg.TracingService))
	}
	if cfg.EnableLogging {
		r.Use(vtlog.Middleware())
	}
	if cfg.RateLimitRPM > 0 {
		r.Use(APIRateLimit(cfg.RateLimitRPM))
	}
}
