// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerStore is a persistent, on-disk TileStore. It replaces ad-hoc
// tmp-directory PBF caches: tiles survive restarts and expire via badger's
// native TTL.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// OpenBadgerStore opens (or creates) the tile database at path.
func OpenBadgerStore(path string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("path", path).Msg("opened badger tile store")
	return &BadgerStore{db: db, logger: logger}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			s.logger.Warn().Err(err).Str("key", key).Msg("badger get failed")
		}
		s.stats.misses.Add(1)
		return nil, false
	}
	s.stats.hits.Add(1)
	if data == nil {
		data = []byte{}
	}
	return data, true
}

func (s *BadgerStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("badger set failed")
		return
	}
	s.stats.sets.Add(1)
}

func (s *BadgerStore) Delete(_ context.Context, key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("badger delete failed")
	}
}

func (s *BadgerStore) Stats() Stats {
	count := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})

	return Stats{
		Hits:        s.stats.hits.Load(),
		Misses:      s.stats.misses.Load(),
		Sets:        s.stats.sets.Load(),
		CurrentSize: count,
	}
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
