package middleware

import (
    "bytes"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/swiftbus/reservation/internal/model"
    "github.com/swiftbus/reservation/internal/repository"
)

// idempotencyTTL is how long a recorded response is replayed for a
// repeated key before the key may be reused.
const idempotencyTTL = 24 * time.Hour

// captureWriter tees the response body so it can be persisted after the
// handler runs.
type captureWriter struct {
    http.ResponseWriter
    buf    bytes.Buffer
    status int
}

func (w *captureWriter) WriteHeader(status int) {
    w.status = status
    w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
    w.buf.Write(b)
    return w.ResponseWriter.Write(b)
}

// Idempotency guards mutating endpoints against duplicate submissions.
// Clients must send an Idempotency-Key header; the first response for a
// given (key, user, endpoint) is recorded and replayed verbatim for any
// repeat within the TTL.  Server errors are not recorded so a failed
// attempt can be retried with the same key.
func Idempotency(repo *repository.IdempotencyRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := c.Request().Header.Get("Idempotency-Key")
            if key == "" {
                return c.JSON(http.StatusBadRequest, echo.Map{"code": "missing_idempotency_key", "message": "Idempotency-Key header is required"})
            }
            userID := UserID(c)
            endpoint := c.Request().Method + " " + c.Path()

            rec, found, err := repo.Get(c.Request().Context(), key, userID, endpoint)
            if err != nil {
                log.Printf("idempotency lookup failed: %v", err)
            } else if found {
                return c.JSONBlob(rec.ResponseStatus, rec.ResponseBody)
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
            c.Response().Writer = cw

            if err := next(c); err != nil {
                return err
            }

            // Only successful and client-error outcomes are replayable.
            if cw.status < 500 {
                rec := model.IdempotencyRecord{
                    Key:            key,
                    UserID:         userID,
                    Endpoint:       endpoint,
                    ResponseStatus: cw.status,
                    ResponseBody:   cw.buf.Bytes(),
                    ExpiresAt:      time.Now().Add(idempotencyTTL),
                }
                if err := repo.Store(c.Request().Context(), rec); err != nil {
                    log.Printf("idempotency store failed: %v", err)
                }
            }
            return nil
        }
    }
}
