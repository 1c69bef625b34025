package model

import "time"

// IdempotencyRecord stores the response of a completed request so a
// retried request with the same Idempotency-Key replays it instead of
// re-executing side effects.  Keyed by (key, user, endpoint) in the
// `idempotency_keys` table; a record is written exactly once and
// lookups ignore expired rows.
type IdempotencyRecord struct {
    Key            string    // idempotency_keys.key
    UserID         string    // idempotency_keys.user_id
    Endpoint       string    // idempotency_keys.endpoint ("METHOD /path")
    ResponseStatus int       // idempotency_keys.response_status
    ResponseBody   []byte    // idempotency_keys.response_body (JSON column)
    CreatedAt      time.Time // idempotency_keys.created_at
    ExpiresAt      time.Time // idempotency_keys.expires_at
}
