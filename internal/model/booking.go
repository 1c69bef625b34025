package model

import "time"

// Booking status values.  A booking is created as pending_payment and
// transitions to confirmed exactly once, on successful payment
// reconciliation.  Cancelled and failed are terminal; confirmed may
// still be cancelled by the passenger.
const (
    BookingPendingPayment = "pending_payment"
    BookingConfirmed      = "confirmed"
    BookingCancelled      = "cancelled"
    BookingFailed         = "failed"
)

// Booking records a passenger's purchase of one or more seats on a
// schedule, as stored in the `bookings` table.  The seat id list and
// the passenger rows are written together in a single transaction, so a
// booking is never observable without its passengers.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who made the booking.
//  ScheduleID    – schedule being booked.
//  SeatIDs       – ordered list of booked seat ids (JSON column).
//  BoardingPoint – chosen boarding point name.
//  DroppingPoint – chosen dropping point name.
//  TotalPaise    – sum of seat prices at claim time, in paise.
//  Status        – pending_payment | confirmed | cancelled | failed.
//  PNR           – booking reference issued on confirmation (nullable).
//  CancelledAt   – cancellation timestamp (nullable).
type Booking struct {
    ID            string      `json:"id"`
    UserID        string      `json:"user_id"`
    ScheduleID    string      `json:"schedule_id"`
    SeatIDs       []string    `json:"seat_ids"`
    BoardingPoint string      `json:"boarding_point"`
    DroppingPoint string      `json:"dropping_point"`
    TotalPaise    int64       `json:"total_paise"`
    Status        string      `json:"status"`
    PNR           *string     `json:"pnr"`
    CancelledAt   *time.Time  `json:"cancelled_at,omitempty"`
    Passengers    []Passenger `json:"passengers,omitempty"`
    CreatedAt     time.Time   `json:"created_at"`
    UpdatedAt     time.Time   `json:"-"`
}

// Cancellable reports whether a user-initiated cancel is allowed from
// the booking's current status.
func (b *Booking) Cancellable() bool {
    return b.Status == BookingPendingPayment || b.Status == BookingConfirmed
}

// Passenger is one traveller on a booking, tied to exactly one seat.
type Passenger struct {
    ID        string `json:"id"`
    BookingID string `json:"booking_id"`
    SeatID    string `json:"seat_id"`
    Name      string `json:"name"`
    Age       int    `json:"age"`
    Gender    string `json:"gender"`
}
