package model

import "time"

// Seat status values.  A seat is available until a passenger claims it,
// locked while a claim is alive, and booked once payment for its booking
// has been reconciled.  Booked is terminal except for release during
// cancellation/refund flows.
const (
    SeatAvailable = "available"
    SeatLocked    = "locked"
    SeatBooked    = "booked"
)

// Seat describes a single seat on a schedule as stored in the `seats`
// table.  Seats are uniquely identified by (schedule_id, seat_label).
// The lock fields mirror the fast-path cache entry: when Status is
// locked, LockedByUser and LockedUntil must both be set; when Status is
// booked, BookingID is set and the lock fields are cleared.
//
// Fields:
//  ID           – primary key identifier.
//  ScheduleID   – schedule to which this seat belongs.
//  SeatLabel    – label shown to passengers (e.g. "L5", "U12").
//  Deck         – deck name ("lower" or "upper").
//  SeatType     – seat type (seater, sleeper).
//  PricePaise   – price of this seat in paise.
//  GenderTag    – optional gender restriction ("female"), nil if none.
//  Status       – available | locked | booked.
//  LockedByUser – user currently holding the lock (nullable).
//  LockedUntil  – lock expiry timestamp (nullable).
//  BookingID    – booking that owns this seat once booked (nullable).
//  RowIndex     – row position within the deck grid.
//  ColIndex     – column position within the deck grid.
type Seat struct {
    ID           string     `json:"id"`          // seats.id
    ScheduleID   string     `json:"schedule_id"` // seats.schedule_id
    SeatLabel    string     `json:"seat_label"`  // seats.seat_label
    Deck         string     `json:"deck"`        // seats.deck
    SeatType     string     `json:"seat_type"`   // seats.seat_type
    PricePaise   int64      `json:"price_paise"` // seats.price_paise
    GenderTag    *string    `json:"gender_tag"`  // seats.gender_tag (nullable)
    Status       string     `json:"status"`      // seats.status
    LockedByUser *string    `json:"-"`           // seats.locked_by_user (nullable)
    LockedUntil  *time.Time `json:"-"`           // seats.locked_until (nullable)
    BookingID    *string    `json:"-"`           // seats.booking_id (nullable)
    RowIndex     int        `json:"row_index"`   // seats.row_index
    ColIndex     int        `json:"col_index"`   // seats.col_index
    CreatedAt    time.Time  `json:"-"`           // seats.created_at
    UpdatedAt    time.Time  `json:"-"`           // seats.updated_at
}

// LockedBy reports whether the seat carries a durable lock owned by the
// given user.
func (s *Seat) LockedBy(userID string) bool {
    return s.Status == SeatLocked && s.LockedByUser != nil && *s.LockedByUser == userID
}

// Claimable reports whether the given user may claim this seat: the seat
// is either free or already locked by the same user (idempotent re-claim).
func (s *Seat) Claimable(userID string) bool {
    return s.Status == SeatAvailable || s.LockedBy(userID)
}
