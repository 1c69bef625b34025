// Package provider abstracts where schedule inventory comes from.  The
// default implementation is backed by our own database, but the
// interface leaves room for external bus operators to be plugged in
// behind the same search and booking surface.
package provider

import (
    "context"
    "time"

    "github.com/swiftbus/reservation/internal/model"
)

// Provider is a source of bus schedules and seat inventory.
type Provider interface {
    // ProviderID identifies the provider in schedule rows.
    ProviderID() string

    // SearchSchedules lists active schedules between two cities on a
    // given travel day.
    SearchSchedules(ctx context.Context, originCityID, destCityID string, day time.Time) ([]model.Schedule, error)

    // GetSeatLayout returns every seat of a schedule in layout order.
    GetSeatLayout(ctx context.Context, scheduleID string) ([]model.Seat, error)

    // ConfirmBooking notifies the provider that a booking was paid for.
    ConfirmBooking(ctx context.Context, booking *model.Booking) error

    // CancelBooking notifies the provider that a booking was cancelled.
    CancelBooking(ctx context.Context, booking *model.Booking) error
}
