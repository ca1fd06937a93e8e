// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadgerStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStoreSetGet(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	_, ok := s.Get(ctx, "14/1/2")
	assert.False(t, ok)

	s.Set(ctx, "14/1/2", []byte("pbf-bytes"), time.Minute)
	data, ok := s.Get(ctx, "14/1/2")
	require.True(t, ok)
	assert.Equal(t, []byte("pbf-bytes"), data)
}

func TestBadgerStoreKnownEmptyTile(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	s.Set(ctx, "14/3/4", []byte{}, time.Minute)
	data, ok := s.Get(ctx, "14/3/4")
	require.True(t, ok)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestBadgerStoreDelete(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	s.Set(ctx, "a", []byte("x"), time.Minute)
	s.Delete(ctx, "a")
	_, ok := s.Get(ctx, "a")
	assert.False(t, ok)
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenBadgerStore(dir, zerolog.Nop())
	require.NoError(t, err)
	s.Set(ctx, "14/1/2", []byte("pbf-bytes"), time.Hour)
	require.NoError(t, s.Close())

	s, err = OpenBadgerStore(dir, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	data, ok := s.Get(ctx, "14/1/2")
	require.True(t, ok)
	assert.Equal(t, []byte("pbf-bytes"), data)
}

func TestBadgerStoreStats(t *testing.T) {
	s := newTestBadgerStore(t)
	ctx := context.Background()

	s.Set(ctx, "a", []byte("x"), time.Minute)
	s.Set(ctx, "b", []byte("y"), time.Minute)
	s.Get(ctx, "a")
	s.Get(ctx, "missing")

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, 2, stats.CurrentSize)
}
