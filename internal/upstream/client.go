// SPDX-License-Identifier: MIT

// Package upstream implements the HTTP client for the XYZ vector tile
// service the downloader pulls PBF data from.
package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/vt2g/internal/metrics"
	"github.com/ManuGH/vt2g/internal/tile"
)

// DefaultBase is the tile endpoint of the GSI experimental vector tile layer.
const DefaultBase = "https://cyberjapandata.gsi.go.jp/xyz/experimental_bvmap"

// maxTileSize caps a single tile response. Vector tiles beyond a few MB are
// malformed or hostile.
const maxTileSize = 16 * 1024 * 1024

// Options configures optional client behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Client fetches raw PBF tiles from an XYZ endpoint ({base}/{z}/{x}/{y}.pbf).
type Client struct {
	base      string
	userAgent string
	http      *http.Client
}

// New creates a client with default options.
func New(base string) *Client {
	return NewWithOptions(base, Options{})
}

// NewWithOptions creates a client with explicit options.
func NewWithOptions(base string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "vt2g"
	}
	return &Client{
		base:      strings.TrimRight(base, "/"),
		userAgent: ua,
		http:      &http.Client{Timeout: timeout},
	}
}

// Base returns the configured endpoint base URL.
func (c *Client) Base() string { return c.base }

// TileURL returns the full URL of a tile.
func (c *Client) TileURL(t tile.Tile) string {
	return c.base + "/" + t.Path()
}

// FetchTile downloads one tile. A nil slice with nil error means the
// upstream has no data for the tile (404/204), which is normal for sparse
// layers and must not abort a download.
func (c *Client) FetchTile(ctx context.Context, t tile.Tile) ([]byte, error) {
	start := time.Now()
	data, err := c.fetchTile(ctx, t)
	elapsed := time.Since(start).Seconds()

	switch {
	case err != nil:
		metrics.RecordTileFetch("error", 0, elapsed)
	case data == nil:
		metrics.RecordTileFetch("empty", 0, elapsed)
	default:
		metrics.RecordTileFetch("success", len(data), elapsed)
	}
	return data, err
}

func (c *Client) fetchTile(ctx context.Context, t tile.Tile) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.TileURL(t), nil)
	if err != nil {
		return nil, &TileError{Sentinel: ErrUpstreamBadResponse, Tile: t.Key(), Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.mapbox-vector-tile,application/octet-stream")

	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &TileError{Sentinel: ErrTimeout, Tile: t.Key(), Err: err}
		}
		return nil, &TileError{Sentinel: ErrUpstreamUnavailable, Tile: t.Key(), Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	switch {
	case res.StatusCode == http.StatusNotFound || res.StatusCode == http.StatusNoContent:
		// Sparse layers: no data at this tile.
		return nil, nil
	case res.StatusCode == http.StatusForbidden:
		return nil, &TileError{Sentinel: ErrForbidden, Tile: t.Key(), Status: res.StatusCode}
	case res.StatusCode >= 500:
		return nil, &TileError{Sentinel: ErrUpstreamError, Tile: t.Key(), Status: res.StatusCode}
	case res.StatusCode != http.StatusOK:
		return nil, &TileError{Sentinel: ErrUpstreamBadResponse, Tile: t.Key(), Status: res.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxTileSize+1))
	if err != nil {
		return nil, &TileError{Sentinel: ErrUpstreamUnavailable, Tile: t.Key(), Err: err}
	}
	if len(data) > maxTileSize {
		return nil, &TileError{Sentinel: ErrTileTooLarge, Tile: t.Key()}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

// Probe checks upstream reachability by requesting a tile with HEAD. Used by
// the readiness checker; any HTTP response counts as reachable.
func (c *Client) Probe(ctx context.Context, t tile.Tile) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.TileURL(t), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.http.Do(req)
	if err != nil {
		return &TileError{Sentinel: ErrUpstreamUnavailable, Tile: t.Key(), Err: err}
	}
	_ = res.Body.Close()
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
