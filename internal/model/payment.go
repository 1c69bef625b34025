package model

import "time"

// Payment status values.  A row starts as created when the payment is
// initiated and moves to success or failed when the gateway callback is
// reconciled.  Once it has left created, callbacks for the same order
// are duplicate deliveries and must not run side effects again.
const (
    PaymentCreated  = "created"
    PaymentPending  = "pending"
    PaymentSuccess  = "success"
    PaymentFailed   = "failed"
    PaymentRefunded = "refunded"
)

// Payment is one payment attempt against a booking, as stored in the
// `payments` table.  OrderID is the merchant-generated identifier that
// correlates the gateway callback with this row; at most one payment
// per booking ever reaches success.
//
// Fields:
//  ID              – primary key identifier.
//  BookingID       – booking this payment pays for.
//  UserID          – user who initiated the payment.
//  OrderID         – unique merchant order identifier.
//  TrackingID      – gateway tracking id (nullable until callback).
//  BankRefNo       – bank reference number (nullable).
//  AmountPaise     – amount in paise.
//  Currency        – ISO currency code, fixed "INR".
//  Status          – created | pending | success | failed | refunded.
//  Gateway         – gateway name, fixed "ccavenue".
//  FailureMessage  – gateway failure message (nullable).
//  GatewayResponse – raw decrypted gateway response (nullable, JSON column).
//  IdempotencyKey  – client idempotency key that created this payment (nullable).
type Payment struct {
    ID              string    `json:"id"`
    BookingID       string    `json:"booking_id"`
    UserID          string    `json:"user_id"`
    OrderID         string    `json:"order_id"`
    TrackingID      *string   `json:"tracking_id"`
    BankRefNo       *string   `json:"bank_ref_no"`
    AmountPaise     int64     `json:"amount_paise"`
    Currency        string    `json:"currency"`
    Status          string    `json:"status"`
    Gateway         string    `json:"gateway"`
    FailureMessage  *string   `json:"failure_message,omitempty"`
    GatewayResponse *string   `json:"-"`
    IdempotencyKey  *string   `json:"-"`
    CreatedAt       time.Time `json:"created_at"`
    UpdatedAt       time.Time `json:"-"`
}
