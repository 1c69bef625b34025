package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/swiftbus/reservation/internal/catalog"
)

// CatalogHandler serves the embedded reference data.
type CatalogHandler struct {
    cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
    return &CatalogHandler{cat: cat}
}

// Cities handles GET /v1/catalog/cities.
func (h *CatalogHandler) Cities(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"cities": h.cat.Cities})
}

// Amenities handles GET /v1/catalog/amenities.
func (h *CatalogHandler) Amenities(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"amenities": h.cat.Amenities})
}

// BusTypes handles GET /v1/catalog/bus-types.
func (h *CatalogHandler) BusTypes(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"bus_types": h.cat.BusTypes})
}

// SeatTypes handles GET /v1/catalog/seat-types.
func (h *CatalogHandler) SeatTypes(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"seat_types": h.cat.SeatTypes})
}
