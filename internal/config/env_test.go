// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	assert.Equal(t, "fallback", ParseString("VT2G_TEST_UNSET", "fallback"))

	t.Setenv("VT2G_TEST_STR", "value")
	assert.Equal(t, "value", ParseString("VT2G_TEST_STR", "fallback"))

	t.Setenv("VT2G_TEST_EMPTY", "")
	assert.Equal(t, "fallback", ParseString("VT2G_TEST_EMPTY", "fallback"))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 7, ParseInt("VT2G_TEST_UNSET", 7))

	t.Setenv("VT2G_TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("VT2G_TEST_INT", 7))

	t.Setenv("VT2G_TEST_INT", "not-a-number")
	assert.Equal(t, 7, ParseInt("VT2G_TEST_INT", 7))
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("VT2G_TEST_UNSET", true))

	t.Setenv("VT2G_TEST_BOOL", "false")
	assert.False(t, ParseBool("VT2G_TEST_BOOL", true))

	t.Setenv("VT2G_TEST_BOOL", "1")
	assert.True(t, ParseBool("VT2G_TEST_BOOL", false))

	t.Setenv("VT2G_TEST_BOOL", "maybe")
	assert.True(t, ParseBool("VT2G_TEST_BOOL", true))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDuration("VT2G_TEST_UNSET", 5*time.Second))

	t.Setenv("VT2G_TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("VT2G_TEST_DUR", 5*time.Second))

	t.Setenv("VT2G_TEST_DUR", "soon")
	assert.Equal(t, 5*time.Second, ParseDuration("VT2G_TEST_DUR", 5*time.Second))
}

func TestParseStringList(t *testing.T) {
	assert.Nil(t, ParseStringList("VT2G_TEST_UNSET", nil))

	t.Setenv("VT2G_TEST_LIST", "a, b ,,c")
	assert.Equal(t, []string{"a", "b", "c"}, ParseStringList("VT2G_TEST_LIST", nil))
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, "badger", cfg.CacheBackend)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VT2G_LISTEN", "127.0.0.1:9999")
	t.Setenv("VT2G_WORKERS", "12")
	t.Setenv("VT2G_CACHE_BACKEND", "memory")

	cfg := FromEnv()
	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, 12, cfg.Workers)
	assert.Equal(t, "memory", cfg.CacheBackend)
}
