package middleware_test

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/go-redis/redismock/v9"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"

    "github.com/swiftbus/reservation/internal/config"
    "github.com/swiftbus/reservation/internal/middleware"
)

func rateLimitedEcho(rdb *redis.Client, rl config.RateLimit) *echo.Echo {
    e := echo.New()
    e.GET("/", func(c echo.Context) error {
        return c.String(http.StatusOK, "ok")
    }, middleware.RateLimit(rdb, rl))
    return e
}

func TestRateLimitUnderLimit(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    rl := config.RateLimit{Limit: 10, Window: time.Minute}
    e := rateLimitedEcho(rdb, rl)

    hash := redis.NewScript(middleware.RateLimitLua).Hash()
    mock.ExpectEvalSha(hash, []string{"ratelimit:192.0.2.1:"}, 10, 60).SetVal(int64(0))

    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitOverLimit(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    rl := config.RateLimit{Limit: 10, Window: time.Minute}
    e := rateLimitedEcho(rdb, rl)

    hash := redis.NewScript(middleware.RateLimitLua).Hash()
    // 30500ms left in the window rounds up to a 31s Retry-After.
    mock.ExpectEvalSha(hash, []string{"ratelimit:192.0.2.1:"}, 10, 60).SetVal(int64(30500))

    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    assert.Equal(t, "31", rec.Header().Get("Retry-After"))
    assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
    assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
    e := rateLimitedEcho(nil, config.DefaultRateLimit)

    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
    rdb, mock := redismock.NewClientMock()
    rl := config.RateLimit{Limit: 10, Window: time.Minute}
    e := rateLimitedEcho(rdb, rl)

    hash := redis.NewScript(middleware.RateLimitLua).Hash()
    mock.ExpectEvalSha(hash, []string{"ratelimit:192.0.2.1:"}, 10, 60).SetErr(assert.AnError)

    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    // A broken cache must not take requests down with it.
    assert.Equal(t, http.StatusOK, rec.Code)
}
