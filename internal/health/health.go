// SPDX-License-Identifier: MIT

// Package health provides the liveness and readiness probes of the daemon,
// with per-component checks suited for Docker HEALTHCHECK and Kubernetes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/vt2g/internal/log"
)

// Status is the overall health or readiness verdict.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult is the outcome of one component check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// ReadinessResponse is the readiness probe body.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker is one component health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager runs registered checkers and serves the probe endpoints.
type Manager struct {
	version  string
	checkers []Checker
}

// NewManager creates a health check manager.
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a component check.
func (m *Manager) RegisterChecker(c Checker) {
	m.checkers = append(m.checkers, c)
}

// Health is the liveness probe: the process is alive, so the status is
// healthy unless verbose component checks say otherwise.
func (m *Manager) Health(ctx context.Context, verbose bool) HealthResponse {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
	}
	if verbose && len(m.checkers) > 0 {
		resp.Checks, resp.Status = m.runChecks(ctx)
	}
	return resp
}

// Ready is the readiness probe: any unhealthy component makes the daemon
// not ready.
func (m *Manager) Ready(ctx context.Context) ReadinessResponse {
	resp := ReadinessResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Timestamp: time.Now(),
	}
	if len(m.checkers) == 0 {
		return resp
	}
	resp.Checks, resp.Status = m.runChecks(ctx)
	if resp.Status == StatusUnhealthy {
		resp.Ready = false
	}
	return resp
}

func (m *Manager) runChecks(ctx context.Context) (map[string]CheckResult, Status) {
	checks := make(map[string]CheckResult, len(m.checkers))
	status := StatusHealthy
	for _, c := range m.checkers {
		result := c.Check(ctx)
		checks[c.Name()] = result
		switch result.Status {
		case StatusUnhealthy:
			status = StatusUnhealthy
		case StatusDegraded:
			if status == StatusHealthy {
				status = StatusDegraded
			}
		}
	}
	return checks, status
}

// ServeHealth handles the /healthz endpoint. Liveness always answers 200.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "health")
	verbose := r.URL.Query().Get("verbose") == "true"

	resp := m.Health(r.Context(), verbose)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "health.encode_error").Msg("failed to encode health response")
	}
}

// ServeReady handles the /readyz endpoint.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "readiness")

	resp := m.Ready(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "readiness.encode_error").Msg("failed to encode readiness response")
	}
}

// WritableDirChecker verifies the export directory exists and is writable.
type WritableDirChecker struct {
	name string
	path string
}

// NewWritableDirChecker creates a checker for a writable directory.
func NewWritableDirChecker(name, path string) *WritableDirChecker {
	return &WritableDirChecker{name: name, path: path}
}

func (c *WritableDirChecker) Name() string { return c.name }

func (c *WritableDirChecker) Check(_ context.Context) CheckResult {
	info, err := os.Stat(c.path)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: c.path}
	}
	if !info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "not a directory", Message: c.path}
	}

	probe := filepath.Join(c.path, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: "directory not writable"}
	}
	_ = os.Remove(probe)
	return CheckResult{Status: StatusHealthy, Message: "directory writable"}
}

// UpstreamChecker probes the tile endpoint.
type UpstreamChecker struct {
	probe func(ctx context.Context) error
}

// NewUpstreamChecker creates a checker around an upstream probe function.
func NewUpstreamChecker(probe func(ctx context.Context) error) *UpstreamChecker {
	return &UpstreamChecker{probe: probe}
}

func (c *UpstreamChecker) Name() string { return "upstream" }

func (c *UpstreamChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.probe(ctx); err != nil {
		// The daemon can still serve cached tiles and previous exports.
		return CheckResult{Status: StatusDegraded, Error: err.Error(), Message: "tile endpoint unreachable"}
	}
	return CheckResult{Status: StatusHealthy, Message: "tile endpoint reachable"}
}

// TileStoreChecker verifies the tile store answers.
type TileStoreChecker struct {
	check func(ctx context.Context) error
}

// NewTileStoreChecker creates a checker around a store health function.
func NewTileStoreChecker(check func(ctx context.Context) error) *TileStoreChecker {
	return &TileStoreChecker{check: check}
}

func (c *TileStoreChecker) Name() string { return "tile_store" }

func (c *TileStoreChecker) Check(ctx context.Context) CheckResult {
	if c.check == nil {
		return CheckResult{Status: StatusHealthy, Message: "not configured (optional)"}
	}
	if err := c.check(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: "tile store unavailable"}
	}
	return CheckResult{Status: StatusHealthy, Message: "tile store reachable"}
}

// LastRunChecker reports on the most recent download job.
type LastRunChecker struct {
	lastSuccess func() time.Time
}

// NewLastRunChecker creates a checker for download job recency. A daemon that
// has not run a job yet is still healthy; jobs are driven by API requests.
func NewLastRunChecker(lastSuccess func() time.Time) *LastRunChecker {
	return &LastRunChecker{lastSuccess: lastSuccess}
}

func (c *LastRunChecker) Name() string { return "last_download" }

func (c *LastRunChecker) Check(_ context.Context) CheckResult {
	last := c.lastSuccess()
	if last.IsZero() {
		return CheckResult{Status: StatusHealthy, Message: "no download yet"}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "last successful download " + last.UTC().Format(time.RFC3339),
	}
}
