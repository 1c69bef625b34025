package middleware

import (
    "log"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/swiftbus/reservation/internal/config"
)

// RateLimitLua implements a fixed-window counter.  The first request in
// a window sets the expiry; when the count exceeds the limit it returns
// the remaining window in milliseconds, otherwise 0.
const RateLimitLua = `
local current = redis.call('INCR', KEYS[1])
if current == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
    return redis.call('PTTL', KEYS[1])
end
return 0
`

var rateLimitScript = redis.NewScript(RateLimitLua)

// RateLimit throttles requests per client IP and user within a fixed
// window.  A nil Redis client disables limiting entirely, and any Redis
// failure lets the request through rather than blocking traffic.
func RateLimit(rdb *redis.Client, rl config.RateLimit) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if rdb == nil {
                return next(c)
            }
            key := "ratelimit:" + c.RealIP() + ":" + UserID(c)
            seconds := int(rl.Window.Seconds())

            res, err := rateLimitScript.Run(c.Request().Context(), rdb, []string{key}, rl.Limit, seconds).Int64()
            if err != nil {
                log.Printf("rate limit check failed: %v", err)
                return next(c)
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
            if res > 0 {
                retryAfter := (res + 999) / 1000
                c.Response().Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
                return c.JSON(http.StatusTooManyRequests, echo.Map{"code": "rate_limited", "message": "too many requests"})
            }
            return next(c)
        }
    }
}
