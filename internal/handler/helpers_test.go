package handler_test

import (
    "database/sql"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"
)

var seatCols = []string{"id", "schedule_id", "seat_label", "deck", "seat_type", "price_paise", "gender_tag", "status", "locked_by_user", "locked_until", "booking_id", "row_index", "col_index", "created_at", "updated_at"}

var scheduleCols = []string{"id", "provider_id", "provider_ref", "operator_name", "bus_type_id", "origin_city_id", "destination_city_id", "departure_at", "arrival_at", "duration_minutes", "amenity_ids", "base_price_paise", "total_seats", "available_seats", "is_active", "boarding_points", "dropping_points"}

var bookingCols = []string{"id", "user_id", "schedule_id", "seat_ids", "boarding_point", "dropping_point", "total_paise", "status", "pnr", "cancelled_at", "created_at", "updated_at"}

var paymentCols = []string{"id", "booking_id", "user_id", "order_id", "tracking_id", "bank_ref_no", "amount_paise", "currency", "status", "gateway", "failure_message", "gateway_response", "idempotency_key", "created_at", "updated_at"}

var paxCols = []string{"id", "booking_id", "seat_id", "name", "age", "gender"}

// newJSONContext builds an Echo context for a JSON request authenticated
// as userID.  An empty userID leaves the request unauthenticated.
func newJSONContext(t *testing.T, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := echo.New().NewContext(req, rec)
    if userID != "" {
        c.Set("user_id", userID)
    }
    return c, rec
}

// newFormContext builds an Echo context for a form POST, as the payment
// gateway sends.
func newFormContext(t *testing.T, target string, form map[string]string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    values := make([]string, 0, len(form))
    for k, v := range form {
        values = append(values, k+"="+v)
    }
    req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(strings.Join(values, "&")))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
    rec := httptest.NewRecorder()
    return echo.New().NewContext(req, rec), rec
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return db, mock
}

func addSeatRow(rows *sqlmock.Rows, id, scheduleID, label, status string, pricePaise int64, lockedBy interface{}, lockedUntil interface{}) *sqlmock.Rows {
    now := time.Now().UTC()
    return rows.AddRow(id, scheduleID, label, "lower", "st-seater", pricePaise, nil, status, lockedBy, lockedUntil, nil, 1, 1, now, now)
}

func addScheduleRow(rows *sqlmock.Rows, id string, availableSeats int) *sqlmock.Rows {
    dep := time.Now().UTC().Add(48 * time.Hour)
    return rows.AddRow(id, "internal", "ref-1", "SwiftBus Travels", "bt-sleeper-ac", "city-mum", "city-pun", dep, dep.Add(3*time.Hour), 180, `["am-wifi"]`, int64(45000), 36, availableSeats, true, `["Borivali"]`, `["Wakad"]`)
}

func addBookingRow(rows *sqlmock.Rows, id, userID, scheduleID, seatIDs, status string, totalPaise int64) *sqlmock.Rows {
    now := time.Now().UTC()
    return rows.AddRow(id, userID, scheduleID, seatIDs, "Borivali", "Wakad", totalPaise, status, nil, nil, now, now)
}

func addPaymentRow(rows *sqlmock.Rows, id, bookingID, userID, orderID, status string, amountPaise int64) *sqlmock.Rows {
    now := time.Now().UTC()
    return rows.AddRow(id, bookingID, userID, orderID, nil, nil, amountPaise, "INR", status, "ccavenue", nil, nil, nil, now, now)
}
