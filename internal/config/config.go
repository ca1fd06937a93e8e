// SPDX-License-Identifier: MIT

// Package config loads and validates the vt2g configuration. Everything is
// environment-driven (VT2G_*); the only configuration file is the optional
// layer catalog, which supports hot reload.
package config

import (
	"time"
)

// AppConfig is the resolved daemon configuration.
type AppConfig struct {
	// Core
	DataDir  string // directory for GeoJSON exports and the tile database
	TileBase string // upstream XYZ endpoint ({z}/{x}/{y}.pbf appended)

	// HTTP servers
	ListenAddr     string
	MetricsEnabled bool
	MetricsAddr    string
	APIToken       string
	AllowedOrigins []string
	RateLimitRPM   int // general API requests per minute per IP

	// Download pipeline
	Workers      int           // concurrent tile fetches
	Retries      int           // per-tile retry attempts after the first try
	FetchTimeout time.Duration // per-tile request deadline
	MinZoom      int
	MaxZoom      int
	UserAgent    string

	// Tile store
	CacheBackend  string // badger|memory|redis|none
	CacheTTL      time.Duration
	CachePath     string // badger database directory (default <DataDir>/tiles)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Upstream circuit breaker
	BreakerThreshold int
	BreakerReset     time.Duration

	// Layer catalog
	CatalogPath string // optional JSON file overriding the built-in catalog

	// Observability
	LogLevel       string
	TracingEnabled bool
}

// FromEnv builds the configuration from environment variables with defaults.
func FromEnv() AppConfig {
	return AppConfig{
		DataDir:  ParseString("VT2G_DATA", "/var/lib/vt2g"),
		TileBase: ParseString("VT2G_TILE_BASE", "https://cyberjapandata.gsi.go.jp/xyz/experimental_bvmap"),

		ListenAddr:     ParseString("VT2G_LISTEN", ":8080"),
		MetricsEnabled: ParseBool("VT2G_METRICS_ENABLED", true),
		MetricsAddr:    ParseString("VT2G_METRICS_LISTEN", ":9090"),
		APIToken:       ParseString("VT2G_API_TOKEN", ""),
		AllowedOrigins: ParseStringList("VT2G_ALLOWED_ORIGINS", nil),
		RateLimitRPM:   ParseInt("VT2G_RATE_LIMIT_RPM", 600),

		Workers:      ParseInt("VT2G_WORKERS", 5),
		Retries:      ParseInt("VT2G_RETRIES", 2),
		FetchTimeout: ParseDuration("VT2G_FETCH_TIMEOUT", 15*time.Second),
		MinZoom:      ParseInt("VT2G_MIN_ZOOM", 4),
		MaxZoom:      ParseInt("VT2G_MAX_ZOOM", 16),
		UserAgent:    ParseString("VT2G_USER_AGENT", "vt2g"),

		CacheBackend:  ParseString("VT2G_CACHE_BACKEND", "badger"),
		CacheTTL:      ParseDuration("VT2G_CACHE_TTL", 24*time.Hour),
		CachePath:     ParseString("VT2G_CACHE_PATH", ""),
		RedisAddr:     ParseString("VT2G_REDIS_ADDR", ""),
		RedisPassword: ParseString("VT2G_REDIS_PASSWORD", ""),
		RedisDB:       ParseInt("VT2G_REDIS_DB", 0),

		BreakerThreshold: ParseInt("VT2G_BREAKER_THRESHOLD", 5),
		BreakerReset:     ParseDuration("VT2G_BREAKER_RESET", 30*time.Second),

		CatalogPath: ParseString("VT2G_LAYER_CATALOG", ""),

		LogLevel:       ParseString("VT2G_LOG_LEVEL", "info"),
		TracingEnabled: ParseBool("VT2G_TRACING_ENABLED", false),
	}
}
