package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/swiftbus/reservation/internal/audit"
    "github.com/swiftbus/reservation/internal/lock"
    "github.com/swiftbus/reservation/internal/middleware"
)

// SeatHandler serves the seat claim endpoints.
type SeatHandler struct {
    locks *lock.Manager
    audit audit.Sink
}

func NewSeatHandler(locks *lock.Manager, sink audit.Sink) *SeatHandler {
    return &SeatHandler{locks: locks, audit: sink}
}

type seatLockRequest struct {
    ScheduleID string   `json:"schedule_id"`
    SeatIDs    []string `json:"seat_ids"`
}

// Lock handles POST /v1/seats/lock.  The claim is all-or-nothing: a
// single contended seat fails the whole request without locking any.
func (h *SeatHandler) Lock(c echo.Context) error {
    var req seatLockRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "invalid body"})
    }
    if req.ScheduleID == "" || len(req.SeatIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "schedule_id and seat_ids are required"})
    }
    userID := middleware.UserID(c)

    res, err := h.locks.Claim(c.Request().Context(), req.ScheduleID, req.SeatIDs, userID)
    if err != nil {
        return seatLockError(c, err)
    }

    h.audit.Record(audit.UserEvent(userID, "seat.locked", "schedule", req.ScheduleID, map[string]interface{}{
        "seat_ids":   res.LockedSeats,
        "expires_at": res.ExpiresAt,
    }))
    return c.JSON(http.StatusOK, echo.Map{"locked_seats": res.LockedSeats, "expires_at": res.ExpiresAt})
}

// Unlock handles DELETE /v1/seats/lock.  Releasing seats the user does
// not hold is a no-op, so the endpoint is safe to retry.
func (h *SeatHandler) Unlock(c echo.Context) error {
    var req seatLockRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "invalid body"})
    }
    if req.ScheduleID == "" || len(req.SeatIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "schedule_id and seat_ids are required"})
    }
    userID := middleware.UserID(c)

    released, err := h.locks.Release(c.Request().Context(), req.ScheduleID, req.SeatIDs, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not release seats"})
    }

    h.audit.Record(audit.UserEvent(userID, "seat.unlocked", "schedule", req.ScheduleID, map[string]interface{}{
        "seat_ids": released,
    }))
    return c.JSON(http.StatusOK, echo.Map{"released_seats": released})
}

// seatLockError maps claim failures onto HTTP responses that name the
// contended seat where one is known.
func seatLockError(c echo.Context, err error) error {
    switch e := err.(type) {
    case *lock.TakenError:
        return c.JSON(http.StatusConflict, echo.Map{"code": "seat_taken", "message": e.Error(), "key": e.Key})
    case *lock.UnavailableError:
        return c.JSON(http.StatusConflict, echo.Map{"code": "seat_unavailable", "message": e.Error(), "seat": e.Label})
    case *lock.WrongScheduleError:
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": e.Error(), "seat": e.Label})
    }
    switch err {
    case lock.ErrSeatsNotFound:
        return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": err.Error()})
    case lock.ErrTooManySeats:
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "too_many_seats", "message": err.Error()})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not lock seats"})
}
