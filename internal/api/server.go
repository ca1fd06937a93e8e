// SPDX-License-Identifier: MIT

// Package api implements the HTTP surface of the daemon: download job
// submission and inspection, the layer catalog, exported files and the
// health probes.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vt2g/internal/api/middleware"
	"github.com/ManuGH/vt2g/internal/config"
	"github.com/ManuGH/vt2g/internal/health"
	"github.com/ManuGH/vt2g/internal/jobs"
)

// Server holds the API dependencies.
type Server struct {
	cfg     config.AppConfig
	manager *jobs.Manager
	health  *health.Manager
	catalog func() *config.Catalog
	version string
}

// NewServer wires the API server. catalog is a function so handlers see
// hot-reloaded catalogs.
func NewServer(cfg config.AppConfig, manager *jobs.Manager, hm *health.Manager, catalog func() *config.Catalog, version string) *Server {
	return &Server{
		cfg:     cfg,
		manager: manager,
		health:  hm,
		catalog: catalog,
		version: version,
	}
}

// Routes builds the router with the canonical middleware stack.
func (s *Server) Routes() http.Handler {
	tracing := ""
	if s.cfg.TracingEnabled {
		tracing = "vt2g"
	}
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            true,
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        tracing,
		EnableLogging:         true,
		RateLimitRPM:          s.cfg.RateLimitRPM,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/api", func(r chi.Router) {
			r.With(middleware.DownloadRateLimit()).Post("/download", s.handleDownload)
			r.Get("/jobs/{id}", s.handleJob)
			r.Get("/status", s.handleStatus)
			r.Get("/layers", s.handleLayers)
		})

		r.Get("/files/{name}", s.handleFile)
	})

	return r
}
