package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "time"

    "github.com/swiftbus/reservation/internal/model"
)

const scheduleColumns = "id, provider_id, provider_ref, operator_name, bus_type_id, origin_city_id, destination_city_id, departure_at, arrival_at, duration_minutes, amenity_ids, base_price_paise, total_seats, available_seats, is_active, boarding_points, dropping_points"

// ScheduleRepo provides data access to the `schedules` table.  The
// string-list columns (amenities, boarding/dropping points) are stored
// as JSON text.
type ScheduleRepo struct {
    db *sql.DB
}

// NewScheduleRepo returns a new ScheduleRepo bound to the provided database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// GetByID loads a single schedule.  Returns ErrScheduleNotFound when no
// row matches.
func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (model.Schedule, error) {
    query := "SELECT " + scheduleColumns + " FROM schedules WHERE id = ?"
    row := r.db.QueryRowContext(ctx, query, id)
    s, err := scanSchedule(row)
    if err == sql.ErrNoRows {
        return model.Schedule{}, ErrScheduleNotFound
    }
    return s, err
}

// Search returns the active schedules between two cities departing on
// the given calendar day, ordered by departure time.
func (r *ScheduleRepo) Search(ctx context.Context, originCityID, destinationCityID string, day time.Time) ([]model.Schedule, error) {
    dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
    dayEnd := dayStart.Add(24 * time.Hour)
    query := "SELECT " + scheduleColumns + " FROM schedules WHERE origin_city_id = ? AND destination_city_id = ? AND departure_at >= ? AND departure_at < ? AND is_active = 1 ORDER BY departure_at"
    rows, err := r.db.QueryContext(ctx, query, originCityID, destinationCityID, dayStart, dayEnd)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Schedule
    for rows.Next() {
        s, err := scanSchedule(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// DecrementAvailableTx subtracts n from the schedule's available-seat
// counter inside the caller's transaction.  Runs as part of booking
// confirmation so a crash cannot leave seats booked without the counter
// moving, or vice versa.
func (r *ScheduleRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, scheduleID string, n int) error {
    const query = "UPDATE schedules SET available_seats = available_seats - ? WHERE id = ?"
    _, err := tx.ExecContext(ctx, query, n, scheduleID)
    return err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
    Scan(dest ...interface{}) error
}

func scanSchedule(sc scanner) (model.Schedule, error) {
    var (
        s         model.Schedule
        amenities []byte
        boarding  []byte
        dropping  []byte
    )
    err := sc.Scan(&s.ID, &s.ProviderID, &s.ProviderRef, &s.OperatorName, &s.BusTypeID,
        &s.OriginCityID, &s.DestinationCityID, &s.DepartureAt, &s.ArrivalAt, &s.DurationMinutes,
        &amenities, &s.BasePricePaise, &s.TotalSeats, &s.AvailableSeats, &s.IsActive, &boarding, &dropping)
    if err != nil {
        return model.Schedule{}, err
    }
    if err := decodeStrings(amenities, &s.AmenityIDs); err != nil {
        return model.Schedule{}, err
    }
    if err := decodeStrings(boarding, &s.BoardingPoints); err != nil {
        return model.Schedule{}, err
    }
    if err := decodeStrings(dropping, &s.DroppingPoints); err != nil {
        return model.Schedule{}, err
    }
    return s, nil
}

func decodeStrings(raw []byte, dst *[]string) error {
    if len(raw) == 0 {
        *dst = []string{}
        return nil
    }
    return json.Unmarshal(raw, dst)
}
