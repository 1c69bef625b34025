package repository_test

import (
    "context"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/swiftbus/reservation/internal/model"
    "github.com/swiftbus/reservation/internal/repository"
)

var paymentCols = []string{"id", "booking_id", "user_id", "order_id", "tracking_id", "bank_ref_no", "amount_paise", "currency", "status", "gateway", "failure_message", "gateway_response", "idempotency_key", "created_at", "updated_at"}

func TestPaymentCreate(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewPaymentRepo(db)

    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments (id, booking_id, user_id, order_id, amount_paise, currency, status, gateway, idempotency_key) VALUES (?, ?, ?, ?, ?, 'INR', 'created', 'ccavenue', ?)")).
        WithArgs("pay-1", "bkg-1", "alice", "SB_abc", int64(149900), nil).
        WillReturnResult(sqlmock.NewResult(0, 1))

    err = repo.Create(context.Background(), &model.Payment{
        ID:          "pay-1",
        BookingID:   "bkg-1",
        UserID:      "alice",
        OrderID:     "SB_abc",
        AmountPaise: 149900,
    })
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentGetByOrderID(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewPaymentRepo(db)

    now := time.Now().UTC()
    rows := sqlmock.NewRows(paymentCols).
        AddRow("pay-1", "bkg-1", "alice", "SB_abc", nil, nil, int64(149900), "INR", "created", "ccavenue", nil, nil, nil, now, now)
    mock.ExpectQuery("SELECT .+ FROM payments WHERE order_id = ?").
        WithArgs("SB_abc").
        WillReturnRows(rows)

    p, err := repo.GetByOrderID(context.Background(), "SB_abc")
    require.NoError(t, err)
    assert.Equal(t, model.PaymentCreated, p.Status)
    assert.Nil(t, p.TrackingID)

    mock.ExpectQuery("SELECT .+ FROM payments WHERE order_id = ?").
        WithArgs("SB_missing").
        WillReturnRows(sqlmock.NewRows(paymentCols))
    _, err = repo.GetByOrderID(context.Background(), "SB_missing")
    assert.ErrorIs(t, err, repository.ErrPaymentNotFound)
}

func TestPaymentMarkSuccess(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewPaymentRepo(db)

    mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET status = 'success', tracking_id = ?, bank_ref_no = ?, gateway_response = ? WHERE order_id = ? AND status = 'created'")).
        WithArgs("trk-9", "ref-7", "order_id=SB_abc&order_status=Success", "SB_abc").
        WillReturnResult(sqlmock.NewResult(0, 1))

    require.NoError(t, repo.MarkSuccess(context.Background(), "SB_abc", "trk-9", "ref-7", "order_id=SB_abc&order_status=Success"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentMarkSuccessAlreadyFinalized(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewPaymentRepo(db)

    mock.ExpectExec("UPDATE payments SET status = 'success'").
        WithArgs("trk-9", "ref-7", "raw", "SB_abc").
        WillReturnResult(sqlmock.NewResult(0, 0))

    err = repo.MarkSuccess(context.Background(), "SB_abc", "trk-9", "ref-7", "raw")
    assert.ErrorIs(t, err, repository.ErrPaymentFinalized)
}

func TestPaymentMarkFailed(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewPaymentRepo(db)

    mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET status = 'failed', failure_message = ?, gateway_response = ? WHERE order_id = ? AND status = 'created'")).
        WithArgs("card declined", "order_id=SB_abc&order_status=Failure", "SB_abc").
        WillReturnResult(sqlmock.NewResult(0, 1))

    require.NoError(t, repo.MarkFailed(context.Background(), "SB_abc", "card declined", "order_id=SB_abc&order_status=Failure"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentMarkFailedAlreadyFinalized(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewPaymentRepo(db)

    mock.ExpectExec("UPDATE payments SET status = 'failed'").
        WithArgs("late", "raw", "SB_abc").
        WillReturnResult(sqlmock.NewResult(0, 0))

    err = repo.MarkFailed(context.Background(), "SB_abc", "late", "raw")
    assert.ErrorIs(t, err, repository.ErrPaymentFinalized)
}
