package provider

import (
    "context"
    "time"

    "github.com/swiftbus/reservation/internal/model"
    "github.com/swiftbus/reservation/internal/repository"
)

// InternalID is the provider id stamped on schedules we operate
// ourselves.
const InternalID = "internal"

// InternalProvider serves schedules straight from our own database.
// Confirm and cancel are no-ops because the booking pipeline already
// mutates the local rows.
type InternalProvider struct {
    schedules *repository.ScheduleRepo
    seats     *repository.SeatRepo
}

func NewInternalProvider(schedules *repository.ScheduleRepo, seats *repository.SeatRepo) *InternalProvider {
    return &InternalProvider{schedules: schedules, seats: seats}
}

func (p *InternalProvider) ProviderID() string { return InternalID }

func (p *InternalProvider) SearchSchedules(ctx context.Context, originCityID, destCityID string, day time.Time) ([]model.Schedule, error) {
    return p.schedules.Search(ctx, originCityID, destCityID, day)
}

func (p *InternalProvider) GetSeatLayout(ctx context.Context, scheduleID string) ([]model.Seat, error) {
    return p.seats.GetBySchedule(ctx, scheduleID)
}

func (p *InternalProvider) ConfirmBooking(ctx context.Context, booking *model.Booking) error {
    return nil
}

func (p *InternalProvider) CancelBooking(ctx context.Context, booking *model.Booking) error {
    return nil
}
