// SPDX-License-Identifier: MIT
package upstream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockServer provides a configurable tile service mock for testing.
type MockServer struct {
	*httptest.Server
	mu       sync.RWMutex
	tiles    map[string][]byte // key "z/x/y" -> PBF bytes
	failures map[string]int    // failures before success per tile
	status   map[string]int    // fixed status override per tile
	delay    time.Duration
	requests map[string]int
}

// NewMockServer creates a tile service mock. Tiles not registered with
// SetTile return 404, matching the sparse-layer behavior of the real
// service.
func NewMockServer() *MockServer {
	mock := &MockServer{
		tiles:    make(map[string][]byte),
		failures: make(map[string]int),
		status:   make(map[string]int),
		requests: make(map[string]int),
	}
	mock.Server = httptest.NewServer(http.HandlerFunc(mock.handleTile))
	return mock
}

// SetTile registers PBF bytes for a tile key ("z/x/y").
func (m *MockServer) SetTile(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles[key] = data
}

// SetFailures makes the next n requests for the tile fail with 503.
func (m *MockServer) SetFailures(key string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[key] = n
}

// SetStatus forces a fixed HTTP status for the tile.
func (m *MockServer) SetStatus(key string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[key] = status
}

// SetDelay adds an artificial delay to every response.
func (m *MockServer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Requests returns how often the tile was requested.
func (m *MockServer) Requests(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[key]
}

func (m *MockServer) handleTile(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".pbf")

	m.mu.Lock()
	m.requests[key]++
	delay := m.delay
	if n := m.failures[key]; n > 0 {
		m.failures[key] = n - 1
		m.mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	forced, hasForced := m.status[key]
	data, ok := m.tiles[key]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if hasForced {
		w.WriteHeader(forced)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.mapbox-vector-tile")
	_, _ = w.Write(data)
}
