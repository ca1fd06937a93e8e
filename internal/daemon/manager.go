// SPDX-License-Identifier: MIT

// Package daemon manages the lifecycle of the vt2g servers: startup,
// supervision and graceful shutdown with LIFO cleanup hooks.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vt2g/internal/log"
)

// ShutdownHook performs cleanup during graceful shutdown. Hooks run in
// reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// Deps contains the handlers the daemon serves.
type Deps struct {
	// APIHandler serves the API on ListenAddr.
	APIHandler http.Handler

	// MetricsHandler serves Prometheus metrics on MetricsAddr; nil disables
	// the metrics server.
	MetricsHandler http.Handler
}

// Validate checks the dependencies.
func (d *Deps) Validate() error {
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}

// Config holds the server addresses and timeouts.
type Config struct {
	ListenAddr      string
	MetricsAddr     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// withDefaults fills unset timeouts. Write timeout is generous because a
// /files response can be a large GeoJSON document.
func (c Config) withDefaults() Config {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Minute
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 2 * time.Minute
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	return c
}

// Manager runs the HTTP servers and coordinates shutdown.
type Manager struct {
	cfg  Config
	deps Deps

	apiServer     *http.Server
	metricsServer *http.Server

	mu            sync.Mutex
	started       bool
	stopping      bool
	shutdownHooks []namedHook

	logger zerolog.Logger
}

type namedHook struct {
	name string
	hook ShutdownHook
}

// NewManager creates a daemon manager.
func NewManager(cfg Config, deps Deps) (*Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	return &Manager{
		cfg:    cfg.withDefaults(),
		deps:   deps,
		logger: log.WithComponent("daemon"),
	}, nil
}

// Start starts all servers and blocks until the context is canceled or a
// server fails. It always runs shutdown before returning.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("manager already started")
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info().
		Str("listen", m.cfg.ListenAddr).
		Dur("shutdown_timeout", m.cfg.ShutdownTimeout).
		Msg("starting daemon")

	errChan := make(chan error, 2)

	if m.deps.MetricsHandler != nil && m.cfg.MetricsAddr != "" {
		m.startMetricsServer(errChan)
	}
	m.startAPIServer(errChan)

	select {
	case err := <-errChan:
		m.logger.Error().Err(err).Msg("server error, initiating shutdown")
		// Detached but bounded: shutdown must complete even though the
		// parent context may already be canceled.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ShutdownTimeout)
		defer cancel()
		if shutdownErr := m.Shutdown(shutdownCtx); shutdownErr != nil {
			return errors.Join(err, shutdownErr)
		}
		return err
	case <-ctx.Done():
		m.logger.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ShutdownTimeout)
		defer cancel()
		return m.Shutdown(shutdownCtx)
	}
}

func (m *Manager) startAPIServer(errChan chan<- error) {
	m.apiServer = &http.Server{
		Addr:              m.cfg.ListenAddr,
		Handler:           m.deps.APIHandler,
		ReadTimeout:       m.cfg.ReadTimeout,
		ReadHeaderTimeout: m.cfg.ReadTimeout / 2,
		WriteTimeout:      m.cfg.WriteTimeout,
		IdleTimeout:       m.cfg.IdleTimeout,
	}

	go func() {
		m.logger.Info().Str("addr", m.cfg.ListenAddr).Msg("API server listening")
		if err := m.apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().Err(err).Str(log.FieldEvent, "api.server.failed").Msg("API server failed")
			errChan <- fmt.Errorf("API server: %w", err)
		}
	}()
}

func (m *Manager) startMetricsServer(errChan chan<- error) {
	m.metricsServer = &http.Server{
		Addr:              m.cfg.MetricsAddr,
		Handler:           m.deps.MetricsHandler,
		ReadHeaderTimeout: m.cfg.ReadTimeout / 2,
	}

	go func() {
		m.logger.Info().Str("addr", m.cfg.MetricsAddr).Msg("metrics server listening")
		if err := m.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().Err(err).Str(log.FieldEvent, "metrics.server.failed").Msg("metrics server failed")
			errChan <- fmt.Errorf("metrics server: %w", err)
		}
	}()
}

// Shutdown stops the servers and runs the registered hooks in LIFO order.
// It is idempotent.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	hooks := make([]namedHook, len(m.shutdownHooks))
	copy(hooks, m.shutdownHooks)
	m.mu.Unlock()

	m.logger.Info().Msg("shutting down")

	var errs []error
	if m.apiServer != nil {
		if err := m.apiServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("API server shutdown: %w", err))
		}
	}
	if m.metricsServer != nil {
		if err := m.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		if err := h.hook(ctx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", h.name).
				Dur("duration", time.Since(start)).
				Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
			continue
		}
		m.logger.Debug().
			Str("hook", h.name).
			Dur("duration", time.Since(start)).
			Msg("shutdown hook completed")
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	m.logger.Info().Msg("daemon stopped cleanly")
	return nil
}

// RegisterShutdownHook adds a cleanup function run during shutdown, in
// reverse registration order.
func (m *Manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownHooks = append(m.shutdownHooks, namedHook{name: name, hook: hook})
}
