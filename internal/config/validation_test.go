// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() AppConfig {
	return AppConfig{
		DataDir:      "/tmp/vt2g",
		TileBase:     "https://cyberjapandata.gsi.go.jp/xyz/experimental_bvmap",
		Workers:      5,
		Retries:      2,
		FetchTimeout: 15 * time.Second,
		MinZoom:      4,
		MaxZoom:      16,
		CacheBackend: "memory",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantMsg string
	}{
		{"empty data dir", func(c *AppConfig) { c.DataDir = "  " }, "data directory"},
		{"empty tile base", func(c *AppConfig) { c.TileBase = "" }, "tile base URL is empty"},
		{"ftp tile base", func(c *AppConfig) { c.TileBase = "ftp://host/tiles" }, "scheme"},
		{"zero workers", func(c *AppConfig) { c.Workers = 0 }, "workers"},
		{"too many workers", func(c *AppConfig) { c.Workers = 64 }, "workers"},
		{"negative retries", func(c *AppConfig) { c.Retries = -1 }, "retries"},
		{"zero fetch timeout", func(c *AppConfig) { c.FetchTimeout = 0 }, "fetch timeout"},
		{"inverted zoom window", func(c *AppConfig) { c.MinZoom = 12; c.MaxZoom = 8 }, "zoom"},
		{"zoom beyond 24", func(c *AppConfig) { c.MaxZoom = 30 }, "zoom"},
		{"unknown cache backend", func(c *AppConfig) { c.CacheBackend = "memcached" }, "cache backend"},
		{"redis without addr", func(c *AppConfig) { c.CacheBackend = "redis" }, "VT2G_REDIS_ADDR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateRedisWithAddr(t *testing.T) {
	cfg := validConfig()
	cfg.CacheBackend = "redis"
	cfg.RedisAddr = "127.0.0.1:6379"
	assert.NoError(t, cfg.Validate())
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("http://localhost:8081/tiles"))
	assert.Error(t, ValidateBaseURL(""))
	assert.Error(t, ValidateBaseURL("https://"))
	assert.Error(t, ValidateBaseURL("file:///etc/passwd"))
}
