// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ManuGH/vt2g/internal/metrics"
)

// Validate checks the configuration for values the daemon cannot start with.
func (c AppConfig) Validate() error {
	if err := c.validate(); err != nil {
		metrics.RecordConfigValidationError()
		return err
	}
	return nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data directory is empty")
	}

	if err := ValidateBaseURL(c.TileBase); err != nil {
		return err
	}

	if c.Workers < 1 || c.Workers > 32 {
		return fmt.Errorf("workers must be in [1,32], got %d", c.Workers)
	}
	if c.Retries < 0 || c.Retries > 10 {
		return fmt.Errorf("retries must be in [0,10], got %d", c.Retries)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}

	if c.MinZoom < 0 || c.MaxZoom > 24 || c.MinZoom > c.MaxZoom {
		return fmt.Errorf("invalid zoom window [%d,%d]", c.MinZoom, c.MaxZoom)
	}

	switch c.CacheBackend {
	case "badger", "memory", "none":
	case "redis":
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("cache backend is redis but VT2G_REDIS_ADDR is empty")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}

	return nil
}

// ValidateBaseURL checks that the tile endpoint is a usable http(s) URL.
func ValidateBaseURL(base string) error {
	base = strings.TrimSpace(base)
	if base == "" {
		return fmt.Errorf("tile base URL is empty")
	}

	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid tile base URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported tile base URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("tile base URL %q is missing host", base)
	}
	return nil
}
