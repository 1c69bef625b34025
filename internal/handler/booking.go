package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/swiftbus/reservation/internal/audit"
    "github.com/swiftbus/reservation/internal/lock"
    "github.com/swiftbus/reservation/internal/middleware"
    "github.com/swiftbus/reservation/internal/model"
    "github.com/swiftbus/reservation/internal/repository"
    "github.com/swiftbus/reservation/internal/utils"
)

// BookingHandler serves booking creation and lifecycle endpoints.
type BookingHandler struct {
    bookings  *repository.BookingRepo
    seats     *repository.SeatRepo
    schedules *repository.ScheduleRepo
    locks     *lock.Manager
    audit     audit.Sink
}

func NewBookingHandler(bookings *repository.BookingRepo, seats *repository.SeatRepo, schedules *repository.ScheduleRepo, locks *lock.Manager, sink audit.Sink) *BookingHandler {
    return &BookingHandler{bookings: bookings, seats: seats, schedules: schedules, locks: locks, audit: sink}
}

type passengerInput struct {
    SeatID string `json:"seat_id"`
    Name   string `json:"name"`
    Age    int    `json:"age"`
    Gender string `json:"gender"`
}

type createBookingRequest struct {
    ScheduleID    string           `json:"schedule_id"`
    SeatIDs       []string         `json:"seat_ids"`
    BoardingPoint string           `json:"boarding_point"`
    DroppingPoint string           `json:"dropping_point"`
    Passengers    []passengerInput `json:"passengers"`
}

// Create handles POST /v1/bookings.  Every requested seat must carry a
// live claim owned by the caller, in the cache when one is configured
// and always in the durable rows.  The booking row and its passengers
// are written in one transaction and the booking starts as
// pending_payment.
func (h *BookingHandler) Create(c echo.Context) error {
    var req createBookingRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "invalid body"})
    }
    userID := middleware.UserID(c)
    ctx := c.Request().Context()

    if req.ScheduleID == "" || len(req.SeatIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "schedule_id and seat_ids are required"})
    }
    if len(req.Passengers) != len(req.SeatIDs) {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "each seat needs exactly one passenger"})
    }
    bySeat := make(map[string]passengerInput, len(req.Passengers))
    for _, p := range req.Passengers {
        if p.Name == "" || p.Age <= 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "passenger name and age are required"})
        }
        if _, dup := bySeat[p.SeatID]; dup {
            return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "duplicate passenger seat assignment"})
        }
        bySeat[p.SeatID] = p
    }
    for _, id := range req.SeatIDs {
        if _, ok := bySeat[id]; !ok {
            return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "passenger missing for seat " + id})
        }
    }

    schedule, err := h.schedules.GetByID(ctx, req.ScheduleID)
    if err != nil {
        if err == repository.ErrScheduleNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "schedule not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load schedule"})
    }

    seats, err := h.seats.GetByIDs(ctx, req.SeatIDs)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load seats"})
    }
    if len(seats) != len(req.SeatIDs) {
        return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "one or more seats not found"})
    }

    var totalPaise int64
    for i := range seats {
        s := &seats[i]
        if s.ScheduleID != schedule.ID {
            return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "seat " + s.SeatLabel + " does not belong to this schedule"})
        }
        if !s.LockedBy(userID) {
            return c.JSON(http.StatusConflict, echo.Map{"code": "lock_expired", "message": "seat " + s.SeatLabel + " is not locked by you"})
        }
        totalPaise += s.PricePaise
    }

    // The cache wins over the durable mirror: a row that still says
    // locked-by-me is stale the moment the cache entry has lapsed or
    // changed hands.
    if client := h.locks.Client(); client != nil {
        for i := range seats {
            owner, err := client.Owner(ctx, lock.Key(schedule.ID, seats[i].SeatLabel))
            if err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not verify seat locks"})
            }
            if owner != userID {
                return c.JSON(http.StatusConflict, echo.Map{"code": "lock_expired", "message": "lock on seat " + seats[i].SeatLabel + " has expired"})
            }
        }
    }

    booking := model.Booking{
        ID:            utils.NewID(),
        UserID:        userID,
        ScheduleID:    schedule.ID,
        SeatIDs:       req.SeatIDs,
        BoardingPoint: req.BoardingPoint,
        DroppingPoint: req.DroppingPoint,
        TotalPaise:    totalPaise,
        Status:        model.BookingPendingPayment,
    }
    passengers := make([]model.Passenger, 0, len(req.Passengers))
    for _, id := range req.SeatIDs {
        in := bySeat[id]
        passengers = append(passengers, model.Passenger{
            ID:        utils.NewID(),
            BookingID: booking.ID,
            SeatID:    id,
            Name:      in.Name,
            Age:       in.Age,
            Gender:    in.Gender,
        })
    }

    tx, err := h.bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not create booking"})
    }
    committed := false
    defer func() {
        if !committed {
            tx.Rollback()
        }
    }()
    if err := h.bookings.CreateTx(ctx, tx, &booking); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not create booking"})
    }
    if err := h.bookings.CreatePassengersTx(ctx, tx, passengers); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not create booking"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not create booking"})
    }
    committed = true

    booking.Passengers = passengers
    h.audit.Record(audit.UserEvent(userID, "booking.created", "booking", booking.ID, map[string]interface{}{
        "schedule_id": schedule.ID,
        "seat_ids":    req.SeatIDs,
        "total_paise": totalPaise,
    }))
    return c.JSON(http.StatusCreated, booking)
}

// List handles GET /v1/bookings?page=&limit=&status=.
func (h *BookingHandler) List(c echo.Context) error {
    userID := middleware.UserID(c)
    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    limit, _ := strconv.Atoi(c.QueryParam("limit"))
    if limit < 1 || limit > 100 {
        limit = 20
    }
    bookings, total, err := h.bookings.ListByUser(c.Request().Context(), userID, page, limit, c.QueryParam("status"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not list bookings"})
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": bookings, "total": total, "page": page, "limit": limit})
}

// Get handles GET /v1/bookings/:id.  Bookings owned by other users look
// identical to missing ones.
func (h *BookingHandler) Get(c echo.Context) error {
    b, err := h.bookings.GetForUser(c.Request().Context(), c.Param("id"), middleware.UserID(c))
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load booking"})
    }
    return c.JSON(http.StatusOK, b)
}

// Cancel handles DELETE /v1/bookings/:id.  Cancelling only moves the
// booking's status; it never touches seat rows.  Seats claimed for a
// pending booking lapse through the lock TTL and the reclaimer sweep,
// and booked seats stay attached to the cancelled booking until a
// refund flow reopens them.
func (h *BookingHandler) Cancel(c echo.Context) error {
    userID := middleware.UserID(c)
    ctx := c.Request().Context()

    b, err := h.bookings.GetForUser(ctx, c.Param("id"), userID)
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load booking"})
    }
    if !b.Cancellable() {
        return c.JSON(http.StatusConflict, echo.Map{"code": "not_cancellable", "message": "booking cannot be cancelled from status " + b.Status})
    }

    if err := h.bookings.UpdateStatus(ctx, b.ID, model.BookingCancelled); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not cancel booking"})
    }

    h.audit.Record(audit.UserEvent(userID, "booking.cancelled", "booking", b.ID, nil))
    b.Status = model.BookingCancelled
    return c.JSON(http.StatusOK, echo.Map{"id": b.ID, "status": b.Status})
}
