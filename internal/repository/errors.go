// Package repository defines typed access to the durable store.  Error
// values declared here are shared across repositories so that handlers
// can translate failure scenarios into the right HTTP status without
// inspecting SQL errors directly.
package repository

import "errors"

// ErrScheduleNotFound is returned when a schedule id does not exist.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrBookingNotFound is returned when a booking does not exist or does
// not belong to the requesting user.  Ownership failures deliberately
// look identical to missing rows so bookings never leak across users.
var ErrBookingNotFound = errors.New("booking not found")

// ErrPaymentNotFound is returned when no payment row matches a gateway
// order id.  The callback is not for a known payment.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrPaymentFinalized is returned when a reconciliation write finds the
// payment already out of the created state.  A concurrent delivery of
// the same callback won the race; the loser must not re-run its side
// effects.
var ErrPaymentFinalized = errors.New("payment already finalized")

// ErrBookingNotPending is returned when confirming a booking that has
// already left pending_payment.  Seat and schedule counters were
// settled by whichever writer got there first.
var ErrBookingNotPending = errors.New("booking not pending payment")

// ErrEmailExists is returned when registration collides with an
// existing account.  Handlers translate this into a 409 response.
var ErrEmailExists = errors.New("email already exists")
