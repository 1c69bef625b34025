// Package lock implements the distributed seat-lock fast path: an
// atomic multi-key claim over a TTL key/value store, plus the seat lock
// manager that keeps the durable store mirror in sync with it.
package lock

import (
    "context"
    "errors"
    "fmt"
    "time"
)

// ErrSeatsNotFound is returned by the manager when one or more
// requested seat ids do not exist.
var ErrSeatsNotFound = errors.New("one or more seats not found")

// ErrTooManySeats is returned when a claim exceeds the per-request cap.
var ErrTooManySeats = errors.New("cannot lock more than 6 seats at once")

// MaxSeatsPerClaim caps how many seats one request may claim.
const MaxSeatsPerClaim = 6

// TakenError reports that a claim lost the race for a seat that is
// currently held by a different owner in the fast-path store.
type TakenError struct {
    Key string // contended lock key
}

func (e *TakenError) Error() string { return "seat already taken: " + e.Key }

// WrongScheduleError reports a seat that does not belong to the
// schedule named in the request.
type WrongScheduleError struct {
    Label string
}

func (e *WrongScheduleError) Error() string {
    return fmt.Sprintf("seat %s does not belong to this schedule", e.Label)
}

// UnavailableError reports a seat whose durable row is locked or booked
// by someone else.
type UnavailableError struct {
    Label string
}

func (e *UnavailableError) Error() string {
    return fmt.Sprintf("seat %s is not available", e.Label)
}

// Client is the atomic claim primitive over the shared TTL store.  A
// nil Client is a valid configuration (dev/test without a cache); the
// manager then degrades to the durable store alone.
//
// TryClaim must be atomic across all keys: either every key is claimed
// for owner, or none are and a *TakenError names the first conflicting
// key.  Re-claiming keys already owned by the same owner succeeds and
// refreshes the TTL.  Release deletes only entries owned by owner.
type Client interface {
    TryClaim(ctx context.Context, keys []string, owner string, ttl time.Duration) error
    Release(ctx context.Context, keys []string, owner string) error
    Owner(ctx context.Context, key string) (string, error)
}

// Key builds the lock key for one seat.  The schedule id scopes the
// label so identical labels on different buses never collide.
func Key(scheduleID, seatLabel string) string {
    return "seat:lock:" + scheduleID + ":" + seatLabel
}
