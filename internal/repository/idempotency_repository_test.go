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

func TestIdempotencyGetHit(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewIdempotencyRepo(db)

    now := time.Now().UTC()
    rows := sqlmock.NewRows([]string{"response_status", "response_body", "created_at", "expires_at"}).
        AddRow(201, []byte(`{"id":"bkg-1"}`), now, now.Add(24*time.Hour))
    mock.ExpectQuery(regexp.QuoteMeta("SELECT response_status, response_body, created_at, expires_at FROM idempotency_keys WHERE `key` = ? AND user_id = ? AND endpoint = ? AND expires_at > UTC_TIMESTAMP()")).
        WithArgs("k1", "alice", "POST /v1/payments/create").
        WillReturnRows(rows)

    rec, found, err := repo.Get(context.Background(), "k1", "alice", "POST /v1/payments/create")
    require.NoError(t, err)
    require.True(t, found)
    assert.Equal(t, 201, rec.ResponseStatus)
    assert.JSONEq(t, `{"id":"bkg-1"}`, string(rec.ResponseBody))
}

func TestIdempotencyGetMiss(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewIdempotencyRepo(db)

    mock.ExpectQuery("SELECT .+ FROM idempotency_keys").
        WithArgs("k1", "alice", "POST /v1/payments/create").
        WillReturnRows(sqlmock.NewRows([]string{"response_status", "response_body", "created_at", "expires_at"}))

    _, found, err := repo.Get(context.Background(), "k1", "alice", "POST /v1/payments/create")
    require.NoError(t, err)
    assert.False(t, found)
}

func TestIdempotencyStoreWriteOnce(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    repo := repository.NewIdempotencyRepo(db)

    expires := time.Now().Add(24 * time.Hour)
    mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO idempotency_keys (`key`, user_id, endpoint, response_status, response_body, expires_at) VALUES (?, ?, ?, ?, ?, ?)")).
        WithArgs("k1", "alice", "POST /v1/payments/create", 200, []byte(`{}`), expires.UTC()).
        WillReturnResult(sqlmock.NewResult(0, 1))

    err = repo.Store(context.Background(), model.IdempotencyRecord{
        Key:            "k1",
        UserID:         "alice",
        Endpoint:       "POST /v1/payments/create",
        ResponseStatus: 200,
        ResponseBody:   []byte(`{}`),
        ExpiresAt:      expires,
    })
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}
