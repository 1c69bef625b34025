package handler // HTTP handlers wiring repositories to the Echo routes

import (
    "database/sql"
    "net/http"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness of the service and its dependencies.
type HealthHandler struct {
    db  *sql.DB
    rdb *redis.Client
}

func NewHealthHandler(db *sql.DB, rdb *redis.Client) *HealthHandler {
    return &HealthHandler{db: db, rdb: rdb}
}

// Health handles GET /health.  The cache being down degrades the
// response body but not the status code: the service still works
// without it.
func (h *HealthHandler) Health(c echo.Context) error {
    dbStatus := "ok"
    if err := h.db.PingContext(c.Request().Context()); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down", "database": err.Error()})
    }
    cacheStatus := "disabled"
    if h.rdb != nil {
        cacheStatus = "ok"
        if err := h.rdb.Ping(c.Request().Context()).Err(); err != nil {
            cacheStatus = "down"
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ok", "database": dbStatus, "cache": cacheStatus})
}
