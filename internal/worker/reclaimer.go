// Package worker holds background jobs that run alongside the HTTP
// server.
package worker

import (
    "context"
    "log"
    "time"

    "github.com/swiftbus/reservation/internal/repository"
)

// Reclaimer periodically resets durable seat locks whose expiry has
// passed.  The cache evicts its own keys by TTL but never touches the
// durable mirror, so without this sweep an expired lock could pin a
// seat forever in the system of record.
type Reclaimer struct {
    seats    *repository.SeatRepo
    interval time.Duration
}

// NewReclaimer builds a Reclaimer sweeping on the given interval.
func NewReclaimer(seats *repository.SeatRepo, interval time.Duration) *Reclaimer {
    if interval <= 0 {
        interval = 2 * time.Minute
    }
    return &Reclaimer{seats: seats, interval: interval}
}

// Run sweeps until ctx is cancelled.  A failed sweep is logged and
// retried on the next tick; it is never fatal to the process.
func (r *Reclaimer) Run(ctx context.Context) {
    ticker := time.NewTicker(r.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            r.Sweep(ctx)
        }
    }
}

// Sweep performs one reclaim pass.
func (r *Reclaimer) Sweep(ctx context.Context) {
    n, err := r.seats.ReclaimExpired(ctx)
    if err != nil {
        log.Printf("reclaimer: sweep failed: %v", err)
        return
    }
    if n > 0 {
        log.Printf("reclaimer: released %d expired seat locks", n)
    }
}
