package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinereserve/booking-api/internal/config"
	"github.com/cinereserve/booking-api/internal/repository"
)

// AdminHandler serves reporting endpoints restricted to the admin role.
type AdminHandler struct {
	Cfg          config.Config
	Reports      *repository.ReportRepo
	Reservations *repository.ReservationRepo
}

func NewAdminHandler(cfg config.Config, reports *repository.ReportRepo, reservations *repository.ReservationRepo) *AdminHandler {
	if reports == nil || reservations == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Reports: reports, Reservations: reservations}
}

// Report handles GET /v1/admin/report: active reservation count, tickets
// sold and the revenue they represent. Cancelled reservations are excluded
// because their seats were released.
func (h *AdminHandler) Report(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	report, err := h.Reports.Generate(ctx, h.Cfg.UnitPriceCents)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// Reservations handles GET /v1/admin/reservations: every reservation in the
// system with seats, movie and showtime, newest first.
func (h *AdminHandler) ListReservations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Reservations.ListAll(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, details)
}
