package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/swiftbus/reservation/internal/model"
)

// seatColumns is the select list shared by all seat queries.  Keep in
// sync with scanSeat.
const seatColumns = "id, schedule_id, seat_label, deck, seat_type, price_paise, gender_tag, status, locked_by_user, locked_until, booking_id, row_index, col_index, created_at, updated_at"

// SeatRepo provides data access to the `seats` table.  Seat rows are the
// principal shared mutable resource of the system; every status change
// funnels through the methods below, and the multi-row updates are a
// single statement so a partial write is never observable.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span several repositories.
func (r *SeatRepo) DB() *sql.DB { return r.db }

// GetByIDs loads the seat rows for the given ids.  The result may be
// shorter than the input when some ids do not exist; callers decide
// whether that is an error.
func (r *SeatRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Seat, error) {
    if len(ids) == 0 {
        return []model.Seat{}, nil
    }
    query := "SELECT " + seatColumns + " FROM seats WHERE id IN (" + placeholders(len(ids)) + ")"
    rows, err := r.db.QueryContext(ctx, query, toArgs(ids)...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectSeats(rows)
}

// GetBySchedule loads every seat of a schedule ordered by deck and grid
// position, for rendering the seat map.
func (r *SeatRepo) GetBySchedule(ctx context.Context, scheduleID string) ([]model.Seat, error) {
    query := "SELECT " + seatColumns + " FROM seats WHERE schedule_id = ? ORDER BY deck, row_index, col_index"
    rows, err := r.db.QueryContext(ctx, query, scheduleID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectSeats(rows)
}

// Lock mirrors a successful fast-path claim into the durable store:
// every seat in ids becomes locked by userID until the given expiry.
// The cache claim is the authoritative conflict check; this write is
// the mirror consumed by the booking orchestrator and the reclaimer.
func (r *SeatRepo) Lock(ctx context.Context, ids []string, userID string, until time.Time) error {
    if len(ids) == 0 {
        return nil
    }
    query := "UPDATE seats SET status = 'locked', locked_by_user = ?, locked_until = ? WHERE id IN (" + placeholders(len(ids)) + ")"
    args := append([]interface{}{userID, until.UTC()}, toArgs(ids)...)
    _, err := r.db.ExecContext(ctx, query, args...)
    return err
}

// UnlockOwned clears the lock fields for rows currently locked by
// userID.  Rows locked by someone else are left untouched.
func (r *SeatRepo) UnlockOwned(ctx context.Context, ids []string, userID string) error {
    if len(ids) == 0 {
        return nil
    }
    query := "UPDATE seats SET status = 'available', locked_by_user = NULL, locked_until = NULL WHERE locked_by_user = ? AND id IN (" + placeholders(len(ids)) + ")"
    args := append([]interface{}{userID}, toArgs(ids)...)
    _, err := r.db.ExecContext(ctx, query, args...)
    return err
}

// MarkBookedTx transitions the seats of a confirmed booking to booked
// within the caller's transaction, clearing lock fields and recording
// the owning booking.
func (r *SeatRepo) MarkBookedTx(ctx context.Context, tx *sql.Tx, ids []string, bookingID string) error {
    if len(ids) == 0 {
        return nil
    }
    query := "UPDATE seats SET status = 'booked', booking_id = ?, locked_by_user = NULL, locked_until = NULL WHERE id IN (" + placeholders(len(ids)) + ")"
    args := append([]interface{}{bookingID}, toArgs(ids)...)
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// Release returns seats to the open pool after a failed payment or a
// refund, clearing both the lock fields and any booking reference.
func (r *SeatRepo) Release(ctx context.Context, ids []string) error {
    if len(ids) == 0 {
        return nil
    }
    query := "UPDATE seats SET status = 'available', locked_by_user = NULL, locked_until = NULL, booking_id = NULL WHERE id IN (" + placeholders(len(ids)) + ")"
    _, err := r.db.ExecContext(ctx, query, toArgs(ids)...)
    return err
}

// ReclaimExpired resets every seat whose durable lock has outlived its
// expiry in one bulk update and reports how many rows were released.
// The cache evicts its own keys by TTL but never touches this mirror,
// so the reclaimer calls this on a fixed interval as the backstop.
func (r *SeatRepo) ReclaimExpired(ctx context.Context) (int64, error) {
    const query = "UPDATE seats SET status = 'available', locked_by_user = NULL, locked_until = NULL WHERE status = 'locked' AND locked_until < UTC_TIMESTAMP()"
    res, err := r.db.ExecContext(ctx, query)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

func collectSeats(rows *sql.Rows) ([]model.Seat, error) {
    var seats []model.Seat
    for rows.Next() {
        s, err := scanSeat(rows)
        if err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}

func scanSeat(rows *sql.Rows) (model.Seat, error) {
    var (
        s        model.Seat
        gender   sql.NullString
        lockedBy sql.NullString
        until    sql.NullTime
        booking  sql.NullString
    )
    err := rows.Scan(&s.ID, &s.ScheduleID, &s.SeatLabel, &s.Deck, &s.SeatType, &s.PricePaise,
        &gender, &s.Status, &lockedBy, &until, &booking, &s.RowIndex, &s.ColIndex, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return model.Seat{}, err
    }
    if gender.Valid {
        s.GenderTag = &gender.String
    }
    if lockedBy.Valid {
        s.LockedByUser = &lockedBy.String
    }
    if until.Valid {
        t := until.Time
        s.LockedUntil = &t
    }
    if booking.Valid {
        s.BookingID = &booking.String
    }
    return s, nil
}

// placeholders returns a "?, ?, ?" list of n parameters.
func placeholders(n int) string {
    if n <= 0 {
        return ""
    }
    return strings.Repeat("?, ", n-1) + "?"
}

func toArgs(ids []string) []interface{} {
    args := make([]interface{}, len(ids))
    for i, id := range ids {
        args[i] = id
    }
    return args
}
