// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// emptyTileMarker is stored for tiles the upstream reported as empty, so a
// zero-length payload survives the Redis round trip distinguishably.
const emptyTileMarker = "\x00empty"

// RedisStore is a Redis-backed implementation of TileStore.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string // Redis server address (host:port)
	Password string // Redis password (optional)
	DB       int    // Redis database number
}

// NewRedisStore creates a new Redis-backed tile store and verifies the
// connection before returning.
func NewRedisStore(config RedisConfig, logger zerolog.Logger) (TileStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", config.Addr).
		Int("db", config.DB).
		Msg("connected to Redis tile store")

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		s.stats.misses.Add(1)
		return nil, false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		s.stats.misses.Add(1)
		return nil, false
	}

	s.stats.hits.Add(1)
	if string(val) == emptyTileMarker {
		return []byte{}, true
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	payload := data
	if len(data) == 0 {
		payload = []byte(emptyTileMarker)
	}

	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
		return
	}

	s.stats.sets.Add(1)
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

func (s *RedisStore) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	size, err := s.client.DBSize(ctx).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("redis dbsize failed")
		size = 0
	}

	return Stats{
		Hits:        s.stats.hits.Load(),
		Misses:      s.stats.misses.Load(),
		Sets:        s.stats.sets.Load(),
		CurrentSize: int(size),
	}
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// HealthCheck checks if Redis is available.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
