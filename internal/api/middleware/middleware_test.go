// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	h := RequestID(okHandler())

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "client-supplied")
	rec = serve(h, req)
	assert.Equal(t, "client-supplied", rec.Header().Get(HeaderRequestID))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://map.example.com"})(okHandler())

	// Listed origin is mirrored back.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://map.example.com")
	rec := serve(h, req)
	assert.Equal(t, "https://map.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origin gets no allow header.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(h, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	// Preflight short-circuits.
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://map.example.com")
	rec = serve(h, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSDefaultsToLocalhost(t *testing.T) {
	h := CORS(nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	rec := serve(h, req)
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders("")(okHandler())
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, DefaultCSP, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	// HSTS only behind TLS termination.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec = serve(h, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 3, WindowSize: time.Minute})(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.7:1234"
		require.Equal(t, http.StatusOK, serve(h, req).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	rec := serve(h, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Another client keeps its own budget.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.8:1234"
	assert.Equal(t, http.StatusOK, serve(h, req).Code)
}

func TestNewRouterServesThroughFullStack(t *testing.T) {
	r := NewRouter(StackConfig{
		EnableCORS:            true,
		EnableSecurityHeaders: true,
		EnableLogging:         true,
		RateLimitRPM:          100,
	})
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
