package repository

import (
    "context"
    "database/sql"

    "github.com/swiftbus/reservation/internal/model"
)

const paymentColumns = "id, booking_id, user_id, order_id, tracking_id, bank_ref_no, amount_paise, currency, status, gateway, failure_message, gateway_response, idempotency_key, created_at, updated_at"

// PaymentRepo provides data access to the `payments` table.  The status
// column is the idempotency gate for gateway callbacks: once a row has
// left the created state, reconciliation treats further callbacks for
// the same order id as duplicate deliveries.
type PaymentRepo struct {
    db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a payment row in the created state.  This happens
// before the encrypted request is handed to the client so a later
// callback can always be matched to a row.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
    const query = "INSERT INTO payments (id, booking_id, user_id, order_id, amount_paise, currency, status, gateway, idempotency_key) VALUES (?, ?, ?, ?, ?, 'INR', 'created', 'ccavenue', ?)"
    _, err := r.db.ExecContext(ctx, query, p.ID, p.BookingID, p.UserID, p.OrderID, p.AmountPaise, p.IdempotencyKey)
    return err
}

// GetByOrderID looks a payment up by its merchant order id.  Returns
// ErrPaymentNotFound when the callback does not match a known payment.
func (r *PaymentRepo) GetByOrderID(ctx context.Context, orderID string) (model.Payment, error) {
    query := "SELECT " + paymentColumns + " FROM payments WHERE order_id = ?"
    row := r.db.QueryRowContext(ctx, query, orderID)
    p, err := scanPayment(row)
    if err == sql.ErrNoRows {
        return model.Payment{}, ErrPaymentNotFound
    }
    return p, err
}

// MarkSuccess records a gateway-reported success with its tracking and
// bank references and the raw decrypted response.  The status predicate
// makes the transition one-shot: a concurrent delivery that already
// finalized the row leaves zero rows affected and the caller gets
// ErrPaymentFinalized.
func (r *PaymentRepo) MarkSuccess(ctx context.Context, orderID, trackingID, bankRefNo, rawResponse string) error {
    const query = "UPDATE payments SET status = 'success', tracking_id = ?, bank_ref_no = ?, gateway_response = ? WHERE order_id = ? AND status = 'created'"
    res, err := r.db.ExecContext(ctx, query, trackingID, bankRefNo, rawResponse, orderID)
    if err != nil {
        return err
    }
    return finalizedIfNoRows(res)
}

// MarkFailed records a gateway-reported failure.  Only a row still in
// the created state is moved; see MarkSuccess.
func (r *PaymentRepo) MarkFailed(ctx context.Context, orderID, failureMessage, rawResponse string) error {
    const query = "UPDATE payments SET status = 'failed', failure_message = ?, gateway_response = ? WHERE order_id = ? AND status = 'created'"
    res, err := r.db.ExecContext(ctx, query, failureMessage, rawResponse, orderID)
    if err != nil {
        return err
    }
    return finalizedIfNoRows(res)
}

func finalizedIfNoRows(res sql.Result) error {
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrPaymentFinalized
    }
    return nil
}

func scanPayment(sc scanner) (model.Payment, error) {
    var (
        p        model.Payment
        tracking sql.NullString
        bankRef  sql.NullString
        failure  sql.NullString
        response sql.NullString
        idemKey  sql.NullString
    )
    err := sc.Scan(&p.ID, &p.BookingID, &p.UserID, &p.OrderID, &tracking, &bankRef, &p.AmountPaise,
        &p.Currency, &p.Status, &p.Gateway, &failure, &response, &idemKey, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        return model.Payment{}, err
    }
    if tracking.Valid {
        p.TrackingID = &tracking.String
    }
    if bankRef.Valid {
        p.BankRefNo = &bankRef.String
    }
    if failure.Valid {
        p.FailureMessage = &failure.String
    }
    if response.Valid {
        p.GatewayResponse = &response.String
    }
    if idemKey.Valid {
        p.IdempotencyKey = &idemKey.String
    }
    return p, nil
}
