package middleware_test

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/swiftbus/reservation/internal/middleware"
    "github.com/swiftbus/reservation/internal/repository"
)

func idempotentEcho(repo *repository.IdempotencyRepo, calls *int) *echo.Echo {
    e := echo.New()
    e.POST("/v1/payments/create", func(c echo.Context) error {
        *calls++
        return c.JSON(http.StatusOK, echo.Map{"order_id": "SB_fresh"})
    }, middleware.Idempotency(repo))
    return e
}

func nowRow() time.Time { return time.Now().UTC() }

func laterRow() time.Time { return time.Now().UTC().Add(24 * time.Hour) }

func TestIdempotencyMissingKey(t *testing.T) {
    db, _, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    calls := 0
    e := idempotentEcho(repository.NewIdempotencyRepo(db), &calls)

    req := httptest.NewRequest(http.MethodPost, "/v1/payments/create", nil)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "missing_idempotency_key")
    assert.Equal(t, 0, calls)
}

func TestIdempotencyReplaysRecordedResponse(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    rows := sqlmock.NewRows([]string{"response_status", "response_body", "created_at", "expires_at"}).
        AddRow(http.StatusOK, []byte(`{"order_id":"SB_recorded"}`), nowRow(), laterRow())
    mock.ExpectQuery("SELECT .+ FROM idempotency_keys").
        WithArgs("k1", "", "POST /v1/payments/create").
        WillReturnRows(rows)

    calls := 0
    e := idempotentEcho(repository.NewIdempotencyRepo(db), &calls)

    req := httptest.NewRequest(http.MethodPost, "/v1/payments/create", nil)
    req.Header.Set("Idempotency-Key", "k1")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "SB_recorded")
    assert.Equal(t, 0, calls, "the handler must not run again on a replay")
}

func TestIdempotencyRecordsFirstResponse(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectQuery("SELECT .+ FROM idempotency_keys").
        WithArgs("k1", "", "POST /v1/payments/create").
        WillReturnRows(sqlmock.NewRows([]string{"response_status", "response_body", "created_at", "expires_at"}))
    mock.ExpectExec("INSERT IGNORE INTO idempotency_keys").
        WithArgs("k1", "", "POST /v1/payments/create", http.StatusOK, sqlmock.AnyArg(), sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(0, 1))

    calls := 0
    e := idempotentEcho(repository.NewIdempotencyRepo(db), &calls)

    req := httptest.NewRequest(http.MethodPost, "/v1/payments/create", nil)
    req.Header.Set("Idempotency-Key", "k1")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), "SB_fresh")
    assert.Equal(t, 1, calls)
    assert.NoError(t, mock.ExpectationsWereMet())
}
