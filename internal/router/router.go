// Package router wires handlers and middleware onto the Echo instance.
package router

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
    "github.com/redis/go-redis/v9"

    "github.com/swiftbus/reservation/internal/config"
    "github.com/swiftbus/reservation/internal/handler"
    "github.com/swiftbus/reservation/internal/middleware"
    "github.com/swiftbus/reservation/internal/repository"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
    Health   *handler.HealthHandler
    Auth     *handler.AuthHandler
    Catalog  *handler.CatalogHandler
    Schedule *handler.ScheduleHandler
    Seat     *handler.SeatHandler
    Booking  *handler.BookingHandler
    Payment  *handler.PaymentHandler
}

// New builds the Echo instance with all routes mounted.  rdb may be
// nil; rate limiting is then disabled.
func New(h Handlers, idem *repository.IdempotencyRepo, rdb *redis.Client, jwtSecret string) *echo.Echo {
    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())
    e.Use(echomw.CORS())

    e.GET("/health", h.Health.Health)

    v1 := e.Group("/v1")
    v1.Use(middleware.RateLimit(rdb, config.DefaultRateLimit))

    auth := v1.Group("/auth")
    auth.POST("/register", h.Auth.Register)
    auth.POST("/login", h.Auth.Login)
    auth.GET("/me", h.Auth.Me, middleware.JWTAuth(jwtSecret))

    cat := v1.Group("/catalog")
    cat.GET("/cities", h.Catalog.Cities)
    cat.GET("/amenities", h.Catalog.Amenities)
    cat.GET("/bus-types", h.Catalog.BusTypes)
    cat.GET("/seat-types", h.Catalog.SeatTypes)

    v1.GET("/schedules", h.Schedule.Search)
    v1.GET("/schedules/:id", h.Schedule.Get)
    v1.GET("/schedules/:id/seats", h.Schedule.Seats)

    seats := v1.Group("/seats", middleware.JWTAuth(jwtSecret), middleware.RateLimit(rdb, config.SeatRateLimit))
    seats.POST("/lock", h.Seat.Lock)
    seats.DELETE("/lock", h.Seat.Unlock)

    bookings := v1.Group("/bookings", middleware.JWTAuth(jwtSecret), middleware.RateLimit(rdb, config.BookingRateLimit))
    bookings.POST("", h.Booking.Create)
    bookings.GET("", h.Booking.List)
    bookings.GET("/:id", h.Booking.Get)
    bookings.DELETE("/:id", h.Booking.Cancel)

    payments := v1.Group("/payments")
    payments.POST("/create", h.Payment.Create,
        middleware.JWTAuth(jwtSecret),
        middleware.RateLimit(rdb, config.PaymentRateLimit),
        middleware.Idempotency(idem))
    // The gateway posts here from the passenger's browser, unauthenticated.
    payments.POST("/response", h.Payment.Callback)

    return e
}
