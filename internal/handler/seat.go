package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinereserve/booking-api/internal/model"
	"github.com/cinereserve/booking-api/internal/repository"
)

// SeatHandler manages the seat inventory of showtimes.
type SeatHandler struct {
	Seats     *repository.SeatRepo
	Showtimes *repository.ShowtimeRepo
}

func NewSeatHandler(seats *repository.SeatRepo, showtimes *repository.ShowtimeRepo) *SeatHandler {
	if seats == nil || showtimes == nil {
		panic("nil repository passed to NewSeatHandler")
	}
	return &SeatHandler{Seats: seats, Showtimes: showtimes}
}

// CreateBulk handles POST /v1/showtimes/:id/seats (admin). The body carries
// seat labels like ["A1","A2"]; each is parsed into a row letter and column
// number, and the batch fails as a whole when any label is malformed or
// already exists for the showtime.
func (h *SeatHandler) CreateBulk(c echo.Context) error {
	showtimeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body struct {
		SeatLabels []string `json:"seat_labels"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	labels := model.NormalizeSeatLabels(body.SeatLabels)
	if len(labels) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_labels is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Showtimes.GetByID(ctx, showtimeID); err != nil {
		return fail(c, err)
	}

	seats := make([]model.Seat, 0, len(labels))
	for _, label := range labels {
		row, col, err := model.ParseSeatLabel(label)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "seat": label})
		}
		seats = append(seats, model.Seat{
			ShowtimeID: showtimeID,
			Label:      label,
			RowLabel:   row,
			ColNumber:  col,
		})
	}
	if err := h.Seats.CreateBulk(ctx, seats); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "seats created",
		"seats":   labels,
	})
}

// List handles GET /v1/showtimes/:id/seats; every seat of the showtime with
// its derived booked flag.
func (h *SeatHandler) List(c echo.Context) error {
	showtimeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || showtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Showtimes.GetByID(ctx, showtimeID); err != nil {
		return fail(c, err)
	}
	seats, err := h.Seats.ListByShowtime(ctx, showtimeID)
	if err != nil {
		return fail(c, err)
	}
	type seatResp struct {
		Label  string `json:"label"`
		Booked bool   `json:"booked"`
	}
	out := make([]seatResp, 0, len(seats))
	for _, s := range seats {
		out = append(out, seatResp{Label: s.Label, Booked: s.Booked})
	}
	return c.JSON(http.StatusOK, out)
}
