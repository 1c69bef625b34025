package config

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestRedisOptionsDefaults(t *testing.T) {
    t.Setenv("REDIS_ADDR", "")
    t.Setenv("REDIS_HOST", "")
    t.Setenv("REDIS_PORT", "")
    t.Setenv("REDIS_PASSWORD", "")
    t.Setenv("REDIS_DB", "")
    t.Setenv("REDIS_TLS", "")

    opts := redisOptions()
    assert.Equal(t, "localhost:6379", opts.Addr)
    assert.Empty(t, opts.Password)
    assert.Equal(t, 0, opts.DB)
    assert.Nil(t, opts.TLSConfig)
}

func TestRedisOptionsHostPortWinOverAddr(t *testing.T) {
    t.Setenv("REDIS_ADDR", "shadow:1111")
    t.Setenv("REDIS_HOST", "cache.internal")
    t.Setenv("REDIS_PORT", "6380")
    t.Setenv("REDIS_PASSWORD", "hunter2")
    t.Setenv("REDIS_DB", "3")
    t.Setenv("REDIS_TLS", "true")

    opts := redisOptions()
    assert.Equal(t, "cache.internal:6380", opts.Addr)
    assert.Equal(t, "hunter2", opts.Password)
    assert.Equal(t, 3, opts.DB)
    assert.NotNil(t, opts.TLSConfig)
}
