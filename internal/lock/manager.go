package lock

import (
    "context"
    "time"

    "github.com/swiftbus/reservation/internal/model"
    "github.com/swiftbus/reservation/internal/repository"
)

// ClaimResult is what a successful claim returns to the passenger.
type ClaimResult struct {
    LockedSeats []string  // seat ids, in request order
    ExpiresAt   time.Time // when the claim lapses unless a booking confirms it
}

// Manager claims and releases seats for a user.  The fast-path client
// is the authoritative conflict detector; the durable store is the
// mirror read by the booking orchestrator and swept by the reclaimer.
// A nil client (cache unavailable) skips the fast path and leaves
// conflict detection to the durable validation alone.
type Manager struct {
    seats  *repository.SeatRepo
    client Client
    ttl    time.Duration
}

// NewManager builds a Manager.  client may be nil.
func NewManager(seats *repository.SeatRepo, client Client, ttl time.Duration) *Manager {
    return &Manager{seats: seats, client: client, ttl: ttl}
}

// Client returns the fast-path client, nil when no cache is configured.
func (m *Manager) Client() Client { return m.client }

// TTL returns the configured claim lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Claim locks the given seats for userID.  Every seat must exist,
// belong to scheduleID and be claimable by this user.  On success the
// durable rows mirror the cache claim.  The cache write happens first:
// it is the single serialization point, so of two overlapping claims at
// most one ever reaches the durable write for the contended seats.
func (m *Manager) Claim(ctx context.Context, scheduleID string, seatIDs []string, userID string) (ClaimResult, error) {
    if len(seatIDs) > MaxSeatsPerClaim {
        return ClaimResult{}, ErrTooManySeats
    }
    seats, err := m.validate(ctx, scheduleID, seatIDs, userID)
    if err != nil {
        return ClaimResult{}, err
    }

    expiresAt := time.Now().UTC().Add(m.ttl)
    if m.client != nil {
        keys := make([]string, len(seats))
        for i, s := range seats {
            keys[i] = Key(scheduleID, s.SeatLabel)
        }
        if err := m.client.TryClaim(ctx, keys, userID, m.ttl); err != nil {
            return ClaimResult{}, err
        }
    }
    if err := m.seats.Lock(ctx, seatIDs, userID, expiresAt); err != nil {
        return ClaimResult{}, err
    }
    return ClaimResult{LockedSeats: seatIDs, ExpiresAt: expiresAt}, nil
}

// Release drops the user's claim on the given seats: cache keys first,
// then the durable rows owned by the user.  Rows locked by others are
// left untouched.
func (m *Manager) Release(ctx context.Context, scheduleID string, seatIDs []string, userID string) ([]string, error) {
    if m.client != nil {
        seats, err := m.seats.GetByIDs(ctx, seatIDs)
        if err != nil {
            return nil, err
        }
        keys := make([]string, len(seats))
        for i, s := range seats {
            keys[i] = Key(scheduleID, s.SeatLabel)
        }
        if err := m.client.Release(ctx, keys, userID); err != nil {
            return nil, err
        }
    }
    if err := m.seats.UnlockOwned(ctx, seatIDs, userID); err != nil {
        return nil, err
    }
    return seatIDs, nil
}

// validate loads the durable rows and checks the claim preconditions:
// all seats exist, belong to the schedule, and are available or already
// locked by this user.
func (m *Manager) validate(ctx context.Context, scheduleID string, seatIDs []string, userID string) ([]model.Seat, error) {
    seats, err := m.seats.GetByIDs(ctx, seatIDs)
    if err != nil {
        return nil, err
    }
    if len(seats) != len(seatIDs) {
        return nil, ErrSeatsNotFound
    }
    for i := range seats {
        s := &seats[i]
        if s.ScheduleID != scheduleID {
            return nil, &WrongScheduleError{Label: s.SeatLabel}
        }
        if !s.Claimable(userID) {
            return nil, &UnavailableError{Label: s.SeatLabel}
        }
    }
    return seats, nil
}
