package repository

import (
    "context"
    "database/sql"
    "encoding/json"
    "time"

    "github.com/swiftbus/reservation/internal/model"
)

const bookingColumns = "id, user_id, schedule_id, seat_ids, boarding_point, dropping_point, total_paise, status, pnr, cancelled_at, created_at, updated_at"

// BookingRepo provides data access to the `bookings` and `passengers`
// tables.  Creation is transactional: a booking row is never persisted
// without its passenger rows.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span several repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts the booking row within the caller's transaction.
// Status is always pending_payment on insert.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    seatIDs, err := json.Marshal(b.SeatIDs)
    if err != nil {
        return err
    }
    const query = "INSERT INTO bookings (id, user_id, schedule_id, seat_ids, boarding_point, dropping_point, total_paise, status) VALUES (?, ?, ?, ?, ?, ?, ?, 'pending_payment')"
    _, err = tx.ExecContext(ctx, query, b.ID, b.UserID, b.ScheduleID, string(seatIDs), b.BoardingPoint, b.DroppingPoint, b.TotalPaise)
    return err
}

// CreatePassengersTx bulk-inserts the passenger rows within the
// caller's transaction.
func (r *BookingRepo) CreatePassengersTx(ctx context.Context, tx *sql.Tx, passengers []model.Passenger) error {
    if len(passengers) == 0 {
        return nil
    }
    query := "INSERT INTO passengers (id, booking_id, seat_id, name, age, gender) VALUES "
    args := make([]interface{}, 0, len(passengers)*6)
    for i, p := range passengers {
        if i > 0 {
            query += ", "
        }
        query += "(?, ?, ?, ?, ?, ?)"
        args = append(args, p.ID, p.BookingID, p.SeatID, p.Name, p.Age, p.Gender)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// GetByID loads a booking with its passengers.  Returns
// ErrBookingNotFound when no row matches.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
    query := "SELECT " + bookingColumns + " FROM bookings WHERE id = ?"
    row := r.db.QueryRowContext(ctx, query, id)
    b, err := scanBooking(row)
    if err == sql.ErrNoRows {
        return model.Booking{}, ErrBookingNotFound
    }
    if err != nil {
        return model.Booking{}, err
    }
    passengers, err := r.passengersByBooking(ctx, id)
    if err != nil {
        return model.Booking{}, err
    }
    b.Passengers = passengers
    return b, nil
}

// GetForUser loads a booking and enforces ownership.  A booking owned
// by another user is indistinguishable from a missing one.
func (r *BookingRepo) GetForUser(ctx context.Context, id, userID string) (model.Booking, error) {
    b, err := r.GetByID(ctx, id)
    if err != nil {
        return model.Booking{}, err
    }
    if b.UserID != userID {
        return model.Booking{}, ErrBookingNotFound
    }
    return b, nil
}

// ListByUser returns a page of the user's bookings, newest first, with
// the total row count for pagination.  An empty status means all
// statuses.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string, page, limit int, status string) ([]model.Booking, int, error) {
    where := "WHERE user_id = ?"
    args := []interface{}{userID}
    if status != "" {
        where += " AND status = ?"
        args = append(args, status)
    }

    var total int
    if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings "+where, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    query := "SELECT " + bookingColumns + " FROM bookings " + where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
    args = append(args, limit, (page-1)*limit)
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    var out []model.Booking
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}

// UpdateStatus moves a booking to the given status.  cancelled_at is
// stamped when the new status is cancelled.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
    if status == model.BookingCancelled {
        const query = "UPDATE bookings SET status = ?, cancelled_at = ? WHERE id = ?"
        _, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
        return err
    }
    const query = "UPDATE bookings SET status = ? WHERE id = ?"
    _, err := r.db.ExecContext(ctx, query, status, id)
    return err
}

// ConfirmTx sets the booking to confirmed with its PNR within the
// caller's transaction.  Part of the payment reconciliation
// transaction together with MarkBookedTx and DecrementAvailableTx.
// The pending_payment predicate serializes concurrent deliveries of
// the same success callback: the loser sees zero rows affected, gets
// ErrBookingNotPending and must roll back without touching seat rows
// or schedule counters.
func (r *BookingRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, id, pnr string) error {
    const query = "UPDATE bookings SET status = 'confirmed', pnr = ? WHERE id = ? AND status = 'pending_payment'"
    res, err := tx.ExecContext(ctx, query, pnr, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrBookingNotPending
    }
    return nil
}

func (r *BookingRepo) passengersByBooking(ctx context.Context, bookingID string) ([]model.Passenger, error) {
    const query = "SELECT id, booking_id, seat_id, name, age, gender FROM passengers WHERE booking_id = ?"
    rows, err := r.db.QueryContext(ctx, query, bookingID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Passenger
    for rows.Next() {
        var p model.Passenger
        if err := rows.Scan(&p.ID, &p.BookingID, &p.SeatID, &p.Name, &p.Age, &p.Gender); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

func scanBooking(sc scanner) (model.Booking, error) {
    var (
        b           model.Booking
        seatIDs     []byte
        pnr         sql.NullString
        cancelledAt sql.NullTime
    )
    err := sc.Scan(&b.ID, &b.UserID, &b.ScheduleID, &seatIDs, &b.BoardingPoint, &b.DroppingPoint,
        &b.TotalPaise, &b.Status, &pnr, &cancelledAt, &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return model.Booking{}, err
    }
    if err := decodeStrings(seatIDs, &b.SeatIDs); err != nil {
        return model.Booking{}, err
    }
    if pnr.Valid {
        b.PNR = &pnr.String
    }
    if cancelledAt.Valid {
        t := cancelledAt.Time
        b.CancelledAt = &t
    }
    return b, nil
}
