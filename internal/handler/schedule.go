package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/swiftbus/reservation/internal/catalog"
    "github.com/swiftbus/reservation/internal/provider"
    "github.com/swiftbus/reservation/internal/repository"
)

// ScheduleHandler serves schedule search and the per-schedule seat map.
type ScheduleHandler struct {
    schedules *repository.ScheduleRepo
    cat       *catalog.Catalog
    providers []provider.Provider
}

func NewScheduleHandler(schedules *repository.ScheduleRepo, cat *catalog.Catalog, providers ...provider.Provider) *ScheduleHandler {
    return &ScheduleHandler{schedules: schedules, cat: cat, providers: providers}
}

// Search handles GET /v1/schedules?origin=<slug>&destination=<slug>&date=YYYY-MM-DD.
// Results from all providers are merged in provider order.
func (h *ScheduleHandler) Search(c echo.Context) error {
    origin, ok := h.cat.CityBySlug(c.QueryParam("origin"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "unknown origin city"})
    }
    dest, ok := h.cat.CityBySlug(c.QueryParam("destination"))
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "unknown destination city"})
    }
    if origin.ID == dest.ID {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "origin and destination must differ"})
    }
    day, err := time.ParseInLocation("2006-01-02", c.QueryParam("date"), time.UTC)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "bad_request", "message": "date must be YYYY-MM-DD"})
    }

    results := make([]interface{}, 0)
    for _, p := range h.providers {
        schedules, err := p.SearchSchedules(c.Request().Context(), origin.ID, dest.ID, day)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "schedule search failed"})
        }
        for _, s := range schedules {
            results = append(results, s)
        }
    }
    return c.JSON(http.StatusOK, echo.Map{
        "origin":      origin,
        "destination": dest,
        "date":        day.Format("2006-01-02"),
        "schedules":   results,
    })
}

// Get handles GET /v1/schedules/:id.
func (h *ScheduleHandler) Get(c echo.Context) error {
    s, err := h.schedules.GetByID(c.Request().Context(), c.Param("id"))
    if err != nil {
        if err == repository.ErrScheduleNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "schedule not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load schedule"})
    }
    return c.JSON(http.StatusOK, s)
}

// Seats handles GET /v1/schedules/:id/seats, returning the full seat
// layout in deck/row/column order.
func (h *ScheduleHandler) Seats(c echo.Context) error {
    ctx := c.Request().Context()
    s, err := h.schedules.GetByID(ctx, c.Param("id"))
    if err != nil {
        if err == repository.ErrScheduleNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"code": "not_found", "message": "schedule not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load schedule"})
    }
    p := h.providerFor(s.ProviderID)
    seats, err := p.GetSeatLayout(ctx, s.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"code": "internal", "message": "could not load seats"})
    }
    return c.JSON(http.StatusOK, echo.Map{"schedule": s, "seats": seats})
}

// providerFor returns the provider owning the schedule, falling back to
// the first registered provider.
func (h *ScheduleHandler) providerFor(providerID string) provider.Provider {
    for _, p := range h.providers {
        if p.ProviderID() == providerID {
            return p
        }
    }
    return h.providers[0]
}
