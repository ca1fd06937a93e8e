// SPDX-License-Identifier: MIT

package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig configures a sliding-window rate limiter.
type RateLimitConfig struct {
	RequestLimit int
	WindowSize   time.Duration
	// KeyFunc extracts the limiter key; nil means per-IP.
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit builds a limiter on httprate's sliding window counter. Rejected
// requests get a JSON 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(cfg.WindowSize.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded"}`))
		}),
	)
}

// APIRateLimit limits general API endpoints per IP and minute.
func APIRateLimit(rpm int) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		RequestLimit: rpm,
		WindowSize:   time.Minute,
	})
}

// DownloadRateLimit limits the expensive download endpoint. A download can
// pull thousands of tiles, so the budget is deliberately small.
func DownloadRateLimit() func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		RequestLimit: 10,
		WindowSize:   time.Minute,
	})
}
