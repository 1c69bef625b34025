package handler

import (
    "log"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/swiftbus/reservation/internal/audit"
    "github.com/swiftbus/reservation/internal/gateway"
    "github.com/swiftbus/reservation/internal/lock"
    "github.com/swiftbus/reservation/internal/middleware"
    "github.com/swiftbus/reservation/internal/model"
    "github.com/swiftbus/reservation/internal/repository"
    "github.com/swiftbus/reservation/internal/utils"
)

// PaymentHandler implements payment initiation and the gateway callback
// that reconciles payment outcomes into booking and seat state.
type PaymentHandler struct {
    payments   *repository.PaymentRepo
    bookings   *repository.BookingRepo
    seats      *repository.SeatRepo
    schedules  *repository.ScheduleRepo
    locks      *lock.Manager
    gw         *gateway.Gateway
    audit      audit.Sink
    appBaseURL string
}

func NewPaymentHandler(payments *repository.PaymentRepo, bookings *repository.BookingRepo, seats *repository.SeatRepo, schedules *repository.ScheduleRepo, locks *lock.Manager, gw *gateway.Gateway, sink audit.Sink, appBaseURL string) *PaymentHandler {
    return &PaymentHandler{
        payments:   payments,
        bookings:   bookings,
        seats:      seats,
        schedules:  schedules,
        locks:      locks,
        gw:         gw,
        audit:      sink,
        appBaseURL: appBaseURL,
    }
}

type createPaymentRequest struct {
    BookingID    string `json:"booking_id"`
    BillingName  string `json:"billing_name"`
    BillingEmail string `json:"billing_email"`
}

// Create handles POST /v1/payments/create.  It records a payment row in
// status created and returns the encrypted gateway request the frontend
// posts to the hosted payment page.
func (h *PaymentHandler) Create(c echo.Context) error {
    var req createPaymentRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "invalid body"})
    }
    if req.BookingID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "booking_id is required"})
    }
    userID := middleware.UserID(c)
    ctx := c.Request().Context()

    if !h.gw.Configured() {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"code": "gateway_not_configured", "message": "payment gateway is not configured"})
    }

    b, err := h.bookings.GetForUser(ctx, req.BookingID, userID)
    if err != nil {
        if err == repository.ErrBookingNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load booking"})
    }
    if b.Status != model.BookingPendingPayment {
        return c.JSON(http.StatusConflict, echo.Map{"code": "invalid_status", "message": "booking is not awaiting payment"})
    }

    orderID := utils.NewOrderID()
    payment := model.Payment{
        ID:          utils.NewID(),
        BookingID:   b.ID,
        UserID:      userID,
        OrderID:     orderID,
        AmountPaise: b.TotalPaise,
    }
    if key := c.Request().Header.Get("Idempotency-Key"); key != "" {
        payment.IdempotencyKey = &key
    }
    if err := h.payments.Create(ctx, &payment); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not create payment"})
    }

    data, err := h.gw.BuildMerchantData(gateway.MerchantParams{
        OrderID:      orderID,
        Amount:       gateway.FormatPaise(b.TotalPaise),
        BillingName:  req.BillingName,
        BillingEmail: req.BillingEmail,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not build payment request"})
    }
    encRequest, err := h.gw.Encrypt(data)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not encrypt payment request"})
    }

    h.audit.Record(audit.UserEvent(userID, "payment.created", "payment", payment.ID, map[string]interface{}{
        "booking_id":   b.ID,
        "order_id":     orderID,
        "amount_paise": b.TotalPaise,
    }))
    return c.JSON(http.StatusOK, echo.Map{
        "order_id":    orderID,
        "enc_request": encRequest,
        "access_code": h.gw.AccessCode,
        "gateway_url": h.gw.BaseURL,
    })
}

// Callback handles POST /v1/payments/response, the browser redirect
// from the gateway.  The payment row is the idempotency gate: once its
// status has left created, repeat deliveries only re-issue the redirect
// for the recorded outcome and never run side effects again.
func (h *PaymentHandler) Callback(c echo.Context) error {
    encResp := c.FormValue("encResp")
    if encResp == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "missing encResp"})
    }
    plain, err := h.gw.Decrypt(encResp)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "could not decrypt gateway response"})
    }
    fields := gateway.ParseResponse(plain)
    orderID := fields["order_id"]
    if orderID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "gateway response missing order_id"})
    }
    ctx := c.Request().Context()

    p, err := h.payments.GetByOrderID(ctx, orderID)
    if err != nil {
        if err == repository.ErrPaymentNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "unknown order"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load payment"})
    }
    if p.Status != model.PaymentCreated {
        // Duplicate delivery.
        return h.redirect(c, p.Status == model.PaymentSuccess, p.BookingID)
    }

    b, err := h.bookings.GetByID(ctx, p.BookingID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load booking"})
    }

    if fields["order_status"] == "Success" {
        if b.Status != model.BookingConfirmed {
            if err := h.finalize(c, &b); err != nil {
                log.Printf("payment %s: finalize booking %s: %v", orderID, b.ID, err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not confirm booking"})
            }
        }
        if err := h.payments.MarkSuccess(ctx, orderID, fields["tracking_id"], fields["bank_ref_no"], plain); err != nil && err != repository.ErrPaymentFinalized {
            log.Printf("payment %s: mark success: %v", orderID, err)
        }
        h.audit.Record(audit.SystemEvent("payment.succeeded", "booking", b.ID, map[string]interface{}{
            "order_id":    orderID,
            "tracking_id": fields["tracking_id"],
        }))
        return h.redirect(c, true, b.ID)
    }

    // Failure or cancellation: record it and free the seats.  The
    // booking stays pending_payment so the passenger can lock seats
    // again and retry.
    failureMsg := fields["failure_message"]
    if failureMsg == "" {
        failureMsg = fields["status_message"]
    }
    if err := h.payments.MarkFailed(ctx, orderID, failureMsg, plain); err != nil {
        if err == repository.ErrPaymentFinalized {
            // A concurrent delivery finalized the payment between our
            // status read and this write.  Reload it and redirect by
            // the recorded outcome; its side effects already ran.
            if p, err := h.payments.GetByOrderID(ctx, orderID); err == nil {
                return h.redirect(c, p.Status == model.PaymentSuccess, p.BookingID)
            }
            return h.redirect(c, false, b.ID)
        }
        log.Printf("payment %s: mark failed: %v", orderID, err)
    }
    if err := h.seats.Release(ctx, b.SeatIDs); err != nil {
        log.Printf("payment %s: release seats: %v", orderID, err)
    }
    if client := h.locks.Client(); client != nil {
        if _, err := h.locks.Release(ctx, b.ScheduleID, b.SeatIDs, b.UserID); err != nil {
            log.Printf("payment %s: release cache locks: %v", orderID, err)
        }
    }
    h.audit.Record(audit.SystemEvent("payment.failed", "booking", b.ID, map[string]interface{}{
        "order_id": orderID,
        "reason":   failureMsg,
    }))
    return h.redirect(c, false, b.ID)
}

// finalize runs the success transaction: booking confirmed with a fresh
// PNR, seats moved to booked, and the schedule's availability counter
// decremented.  All three land or none do.
func (h *PaymentHandler) finalize(c echo.Context, b *model.Booking) error {
    ctx := c.Request().Context()
    tx, err := h.bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            tx.Rollback()
        }
    }()

    pnr := utils.NewPNR()
    if err := h.bookings.ConfirmTx(ctx, tx, b.ID, pnr); err != nil {
        if err == repository.ErrBookingNotPending {
            // Another delivery of the same callback confirmed the
            // booking first.  Roll back so seats and the schedule
            // counter are settled exactly once.
            b.Status = model.BookingConfirmed
            return nil
        }
        return err
    }
    if err := h.seats.MarkBookedTx(ctx, tx, b.SeatIDs, b.ID); err != nil {
        return err
    }
    if err := h.schedules.DecrementAvailableTx(ctx, tx, b.ScheduleID, len(b.SeatIDs)); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true

    b.Status = model.BookingConfirmed
    b.PNR = &pnr
    return nil
}

// redirect sends the browser back to the frontend result page.
func (h *PaymentHandler) redirect(c echo.Context, success bool, bookingID string) error {
    page := "/payment/failure"
    if success {
        page = "/payment/success"
    }
    return c.Redirect(http.StatusFound, h.appBaseURL+page+"?bookingId="+bookingID)
}
