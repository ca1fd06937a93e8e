// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/vt2g/internal/metrics"
	"github.com/ManuGH/vt2g/internal/resilience"
	"github.com/ManuGH/vt2g/internal/tile"
	"github.com/ManuGH/vt2g/internal/upstream"
)

// tileResult pairs a tile of the cover with its raw payload. A nil data slice
// with nil error means the upstream has no tile there.
type tileResult struct {
	tile tile.Tile
	data []byte
	hit  bool
	err  error
}

// fetchAll downloads every tile of the cover with a bounded worker pool.
// Results keep the cover's order so the merged output is deterministic. The
// first hard error cancels the remaining fetches.
func fetchAll(ctx context.Context, cfg Config, tiles []tile.Tile) ([]tileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]tileResult, len(tiles))
	sem := make(chan struct{}, cfg.workers())
	var wg sync.WaitGroup

	for i, t := range tiles {
		wg.Add(1)
		go func(i int, t tile.Tile) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = tileResult{tile: t, err: ctx.Err()}
				return
			}

			data, hit, err := fetchOne(ctx, cfg, t)
			results[i] = tileResult{tile: t, data: data, hit: hit, err: err}
			if err != nil {
				cancel()
			}
		}(i, t)
	}
	wg.Wait()

	// Prefer the error that triggered the cancellation over the cancellations
	// it caused.
	var firstErr error
	var firstTile string
	for _, r := range results {
		if r.err == nil {
			continue
		}
		if firstErr == nil || (errors.Is(firstErr, context.Canceled) && !errors.Is(r.err, context.Canceled)) {
			firstErr = r.err
			firstTile = r.tile.Key()
		}
	}
	if firstErr != nil {
		return results, fmt.Errorf("fetch tile %s: %w", firstTile, firstErr)
	}
	return results, nil
}

// fetchOne resolves a single tile: tile store first, then the upstream with
// retries behind the circuit breaker. Empty tiles are cached as present empty
// slices so sparse areas do not hit the upstream again.
func fetchOne(ctx context.Context, cfg Config, t tile.Tile) (data []byte, hit bool, err error) {
	key := t.Key()
	if cached, ok := cfg.Store.Get(ctx, key); ok {
		metrics.RecordCacheLookup(true)
		if len(cached) == 0 {
			return nil, true, nil
		}
		return cached, true, nil
	}
	metrics.RecordCacheLookup(false)

	var lastErr error
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt*500) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := cfg.Breaker.Execute(func() error {
			fctx := ctx
			if cfg.FetchTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
				defer cancel()
			}
			var ferr error
			data, ferr = cfg.Client.FetchTile(fctx, t)
			return ferr
		})
		if err == nil {
			stored := data
			if stored == nil {
				stored = []byte{} // remember known-empty tiles
			}
			cfg.Store.Set(ctx, key, stored, cfg.CacheTTL)
			return data, false, nil
		}

		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, false, lastErr
}

// retryable reports whether another attempt can change the outcome.
func retryable(err error) bool {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, upstream.ErrForbidden),
		errors.Is(err, upstream.ErrTileTooLarge),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}
