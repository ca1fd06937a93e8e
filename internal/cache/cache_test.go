// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore(0)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	_, ok := s.Get(ctx, "14/1/2")
	assert.False(t, ok)

	s.Set(ctx, "14/1/2", []byte("pbf-bytes"), time.Minute)
	data, ok := s.Get(ctx, "14/1/2")
	require.True(t, ok)
	assert.Equal(t, []byte("pbf-bytes"), data)
}

func TestMemoryStoreKnownEmptyTile(t *testing.T) {
	s := NewMemoryStore(0)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	// A present empty slice means "upstream has no tile here"; the store
	// must keep it distinct from a miss.
	s.Set(ctx, "14/3/4", []byte{}, time.Minute)
	data, ok := s.Get(ctx, "14/3/4")
	require.True(t, ok)
	assert.Empty(t, data)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(0)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	s.Set(ctx, "14/1/2", []byte("x"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := s.Get(ctx, "14/1/2")
	assert.False(t, ok)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(0)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	s.Set(ctx, "14/1/2", []byte("x"), time.Minute)
	s.Delete(ctx, "14/1/2")
	_, ok := s.Get(ctx, "14/1/2")
	assert.False(t, ok)
}

func TestMemoryStoreStats(t *testing.T) {
	s := NewMemoryStore(0)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	s.Set(ctx, "a", []byte("x"), time.Minute)
	s.Get(ctx, "a")
	s.Get(ctx, "b")

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestMemoryStoreJanitorEvicts(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	s.Set(ctx, "a", []byte("x"), 5*time.Millisecond)

	assert.Eventually(t, func() bool {
		return s.Stats().CurrentSize == 0
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}

func TestNoOpStore(t *testing.T) {
	s := NewNoOpStore()
	ctx := context.Background()

	s.Set(ctx, "a", []byte("x"), time.Minute)
	_, ok := s.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, s.Stats())
	assert.NoError(t, s.Close())
}
