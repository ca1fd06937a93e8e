// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (TileStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreSetGet(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	_, ok := s.Get(ctx, "14/1/2")
	assert.False(t, ok)

	s.Set(ctx, "14/1/2", []byte("pbf-bytes"), time.Minute)
	data, ok := s.Get(ctx, "14/1/2")
	require.True(t, ok)
	assert.Equal(t, []byte("pbf-bytes"), data)
}

func TestRedisStoreKnownEmptyTile(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	// Empty payloads survive the round trip as the marker value and come
	// back as a present empty slice.
	s.Set(ctx, "14/3/4", []byte{}, time.Minute)
	data, ok := s.Get(ctx, "14/3/4")
	require.True(t, ok)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestRedisStoreTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	s.Set(ctx, "14/1/2", []byte("x"), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := s.Get(ctx, "14/1/2")
	assert.False(t, ok)
}

func TestRedisStoreDelete(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	s.Set(ctx, "a", []byte("x"), time.Minute)
	s.Delete(ctx, "a")
	_, ok := s.Get(ctx, "a")
	assert.False(t, ok)
}

func TestRedisStoreStats(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	s.Set(ctx, "a", []byte("x"), time.Minute)
	s.Get(ctx, "a")
	s.Get(ctx, "missing")

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestRedisStoreHealthCheck(t *testing.T) {
	s, mr := newTestRedisStore(t)
	rs, ok := s.(*RedisStore)
	require.True(t, ok)

	assert.NoError(t, rs.HealthCheck(context.Background()))
	mr.Close()
	assert.Error(t, rs.HealthCheck(context.Background()))
}

func TestNewRedisStoreConnectionFailure(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	assert.Error(t, err)
}
