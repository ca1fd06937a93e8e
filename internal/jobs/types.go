// SPDX-License-Identifier: MIT

// Package jobs implements the download pipeline: compute the tile cover of a
// bounding box, fetch the tiles with bounded concurrency, decode one source
// layer from each, and write the merged features as a GeoJSON file.
package jobs

import (
	"time"

	"github.com/ManuGH/vt2g/internal/cache"
	"github.com/ManuGH/vt2g/internal/config"
	"github.com/ManuGH/vt2g/internal/resilience"
	"github.com/ManuGH/vt2g/internal/tile"
	"github.com/ManuGH/vt2g/internal/upstream"
)

// Request describes one download: a single source layer over a bounding box
// at one zoom level.
type Request struct {
	BBox     tile.BBox `json:"bbox"`
	Layer    string    `json:"layer"`
	Zoom     int       `json:"zoom"`
	Clip     bool      `json:"clip,omitempty"`     // drop features whose extent misses the box
	Mercator bool      `json:"mercator,omitempty"` // emit EPSG:3857 instead of WGS84
}

// Result summarizes a completed download.
type Result struct {
	Output     string `json:"output"`
	Tiles      int    `json:"tiles"`
	EmptyTiles int    `json:"empty_tiles"`
	CacheHits  int    `json:"cache_hits"`
	Features   int    `json:"features"`
	Bytes      int64  `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
}

// Config carries the dependencies and limits of the pipeline. Catalog is a
// function so a running manager always sees the hot-reloaded catalog.
type Config struct {
	DataDir      string
	Workers      int
	Retries      int
	FetchTimeout time.Duration
	MinZoom      int
	MaxZoom      int
	CacheTTL     time.Duration

	Client  *upstream.Client
	Store   cache.TileStore
	Breaker *resilience.CircuitBreaker
	Catalog func() *config.Catalog
	Clock   func() time.Time
}

func (c Config) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

func (c Config) catalog() *config.Catalog {
	if c.Catalog != nil {
		return c.Catalog()
	}
	return config.DefaultCatalog()
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}
