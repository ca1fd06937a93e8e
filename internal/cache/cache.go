// SPDX-License-Identifier: MIT

// Package cache provides the tile store: raw PBF bytes keyed by tile path,
// with TTL support. A zero-length value is a valid entry and marks a tile
// the upstream reported as empty, so repeat downloads skip the request.
package cache

import (
	"context"
	"sync"
	"time"
)

// TileStore is the storage interface consulted before every upstream fetch.
type TileStore interface {
	// Get retrieves a tile. The bool reports presence; a present empty
	// slice means "known empty tile".
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a tile with the specified TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	// Delete removes a tile.
	Delete(ctx context.Context, key string)
	// Stats returns store statistics.
	Stats() Stats
	// Close releases resources held by the store.
	Close() error
}

// Stats holds tile store performance counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	CurrentSize int   `json:"current_size"`
}

// entry represents a stored tile with expiration time.
type entry struct {
	data       []byte
	expiration time.Time
}

func (e *entry) isExpired() bool {
	return time.Now().After(e.expiration)
}

// memoryStore is an in-memory implementation of TileStore.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	stats   Stats
	janitor *janitor
}

// NewMemoryStore creates an in-memory tile store with automatic cleanup.
// The cleanupInterval determines how often expired entries are removed;
// zero disables the janitor.
func NewMemoryStore(cleanupInterval time.Duration) TileStore {
	s := &memoryStore{
		entries: make(map[string]*entry),
	}

	if cleanupInterval > 0 {
		s.janitor = &janitor{
			interval: cleanupInterval,
			stop:     make(chan struct{}),
		}
		go s.janitor.run(s)
	}

	return s
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key]
	if !found || e.isExpired() {
		s.stats.Misses++
		return nil, false
	}

	s.stats.Hits++
	return e.data, true
}

func (s *memoryStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &entry{
		data:       data,
		expiration: time.Now().Add(ttl),
	}
	s.stats.Sets++
}

func (s *memoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *memoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := s.stats
	stats.CurrentSize = len(s.entries)
	return stats
}

func (s *memoryStore) Close() error {
	if s.janitor != nil {
		s.janitor.stopOnce.Do(func() { close(s.janitor.stop) })
	}
	return nil
}

// deleteExpired removes all expired entries. Returns the number deleted.
func (s *memoryStore) deleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, e := range s.entries {
		if e.isExpired() {
			delete(s.entries, key)
			count++
		}
	}

	s.stats.Evictions += int64(count)
	return count
}

// janitor performs periodic cleanup of expired entries.
type janitor struct {
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func (j *janitor) run(s *memoryStore) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deleteExpired()
		case <-j.stop:
			return
		}
	}
}

// noOpStore is a store that keeps nothing (caching disabled).
type noOpStore struct{}

// NewNoOpStore creates a store that doesn't cache anything.
func NewNoOpStore() TileStore {
	return &noOpStore{}
}

func (noOpStore) Get(context.Context, string) ([]byte, bool)            { return nil, false }
func (noOpStore) Set(context.Context, string, []byte, time.Duration)    {}
func (noOpStore) Delete(context.Context, string)                        {}
func (noOpStore) Stats() Stats                                          { return Stats{} }
func (noOpStore) Close() error                                          { return nil }
