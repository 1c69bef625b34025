package config

import "time"

// RateLimit is a per-route request budget: at most Limit requests per
// Window for one (client IP, user) pair.
type RateLimit struct {
    Limit  int
    Window time.Duration
}

// Route-specific budgets.  Seat locking tolerates more traffic than
// payment creation; everything else uses the default.
var (
    DefaultRateLimit = RateLimit{Limit: 100, Window: time.Minute}
    SeatRateLimit    = RateLimit{Limit: 30, Window: time.Minute}
    BookingRateLimit = RateLimit{Limit: 20, Window: time.Minute}
    PaymentRateLimit = RateLimit{Limit: 10, Window: time.Minute}
)
