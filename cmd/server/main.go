package main

import (
    "context"
    "log"

    "github.com/joho/godotenv"

    "github.com/swiftbus/reservation/internal/audit"
    "github.com/swiftbus/reservation/internal/catalog"
    "github.com/swiftbus/reservation/internal/config"
    "github.com/swiftbus/reservation/internal/database"
    "github.com/swiftbus/reservation/internal/gateway"
    "github.com/swiftbus/reservation/internal/handler"
    "github.com/swiftbus/reservation/internal/lock"
    "github.com/swiftbus/reservation/internal/provider"
    "github.com/swiftbus/reservation/internal/repository"
    "github.com/swiftbus/reservation/internal/router"
    "github.com/swiftbus/reservation/internal/worker"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // The cache is optional: without it seat claims fall back to the
    // durable rows alone.
    rdb := config.NewRedisClient()
    var lockClient lock.Client
    if rdb != nil {
        lockClient = lock.NewRedisClient(rdb)
    } else {
        log.Println("redis unavailable, seat locking degrades to database only")
    }

    cat, err := catalog.Load()
    if err != nil {
        log.Fatalf("catalog: %v", err)
    }

    users := repository.NewUserRepo(db)
    seats := repository.NewSeatRepo(db)
    schedules := repository.NewScheduleRepo(db)
    bookings := repository.NewBookingRepo(db)
    payments := repository.NewPaymentRepo(db)
    idem := repository.NewIdempotencyRepo(db)

    locks := lock.NewManager(seats, lockClient, cfg.SeatLockTTL)

    var sink audit.Sink = audit.LogSink{}
    if cfg.AMQPURL != "" {
        async := audit.NewAsyncSink(cfg.AMQPURL, 0)
        defer async.Close()
        sink = async
        go func() {
            if err := audit.StartConsumer(cfg.AMQPURL); err != nil {
                log.Printf("audit consumer stopped: %v", err)
            }
        }()
    }

    gw := &gateway.Gateway{
        MerchantID:  cfg.CCAvenueMerchantID,
        WorkingKey:  cfg.CCAvenueWorkingKey,
        AccessCode:  cfg.CCAvenueAccessCode,
        BaseURL:     cfg.CCAvenueBaseURL,
        RedirectURL: cfg.CCAvenueRedirectURL,
        CancelURL:   cfg.CCAvenueCancelURL,
    }
    if !gw.Configured() {
        log.Println("payment gateway not configured, payment initiation disabled")
    }

    internalProvider := provider.NewInternalProvider(schedules, seats)

    reclaimer := worker.NewReclaimer(seats, cfg.LockReclaimInterval)
    go reclaimer.Run(context.Background())

    e := router.New(router.Handlers{
        Health:   handler.NewHealthHandler(db, rdb),
        Auth:     handler.NewAuthHandler(users, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost),
        Catalog:  handler.NewCatalogHandler(cat),
        Schedule: handler.NewScheduleHandler(schedules, cat, internalProvider),
        Seat:     handler.NewSeatHandler(locks, sink),
        Booking:  handler.NewBookingHandler(bookings, seats, schedules, locks, sink),
        Payment:  handler.NewPaymentHandler(payments, bookings, seats, schedules, locks, gw, sink, cfg.AppBaseURL),
    }, idem, rdb, cfg.JWTSecret)

    log.Fatal(e.Start(":" + cfg.Port))
}
