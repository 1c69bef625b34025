package repository

import (
    "context"
    "database/sql"

    "github.com/swiftbus/reservation/internal/model"
)

// IdempotencyRepo provides data access to the `idempotency_keys` table.
type IdempotencyRepo struct {
    db *sql.DB
}

// NewIdempotencyRepo returns a new IdempotencyRepo bound to the provided database.
func NewIdempotencyRepo(db *sql.DB) *IdempotencyRepo { return &IdempotencyRepo{db: db} }

// Get returns the stored response for (key, user, endpoint), ignoring
// expired records.  The bool result is false on a miss.
func (r *IdempotencyRepo) Get(ctx context.Context, key, userID, endpoint string) (model.IdempotencyRecord, bool, error) {
    const query = "SELECT response_status, response_body, created_at, expires_at FROM idempotency_keys WHERE `key` = ? AND user_id = ? AND endpoint = ? AND expires_at > UTC_TIMESTAMP()"
    rec := model.IdempotencyRecord{Key: key, UserID: userID, Endpoint: endpoint}
    err := r.db.QueryRowContext(ctx, query, key, userID, endpoint).
        Scan(&rec.ResponseStatus, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt)
    if err == sql.ErrNoRows {
        return model.IdempotencyRecord{}, false, nil
    }
    if err != nil {
        return model.IdempotencyRecord{}, false, err
    }
    return rec, true, nil
}

// Store persists a record write-once.  INSERT IGNORE keeps the first
// recorded response when two retries race: the loser's write is a
// silent no-op, never an overwrite.
func (r *IdempotencyRepo) Store(ctx context.Context, rec model.IdempotencyRecord) error {
    const query = "INSERT IGNORE INTO idempotency_keys (`key`, user_id, endpoint, response_status, response_body, expires_at) VALUES (?, ?, ?, ?, ?, ?)"
    _, err := r.db.ExecContext(ctx, query, rec.Key, rec.UserID, rec.Endpoint, rec.ResponseStatus, rec.ResponseBody, rec.ExpiresAt.UTC())
    return err
}
