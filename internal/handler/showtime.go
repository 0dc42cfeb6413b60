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

// ShowtimeHandler implements showtime creation and search.
type ShowtimeHandler struct {
	Showtimes *repository.ShowtimeRepo
}

func NewShowtimeHandler(showtimes *repository.ShowtimeRepo) *ShowtimeHandler {
	if showtimes == nil {
		panic("nil repository passed to NewShowtimeHandler")
	}
	return &ShowtimeHandler{Showtimes: showtimes}
}

type showtimeReq struct {
	MovieID     uint64 `json:"movie_id"`
	StartTime   string `json:"start_time"` // YYYY-MM-DD HH:MM:SS, UTC
	DurationMin uint32 `json:"duration"`
}

// Create handles POST /v1/showtimes (admin).
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req showtimeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MovieID == 0 || req.StartTime == "" || req.DurationMin == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields"})
	}
	start, err := time.Parse("2006-01-02 15:04:05", req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start time format, use YYYY-MM-DD HH:MM:SS"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	st := model.Showtime{MovieID: req.MovieID, StartTime: start.UTC(), DurationMin: req.DurationMin}
	if err := h.Showtimes.Create(ctx, &st); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         st.ID,
		"movie_id":   st.MovieID,
		"start_time": st.StartTime.Format(time.RFC3339),
		"duration":   st.DurationMin,
	})
}

// Search handles GET /v1/showtimes/search; accepts either date=YYYY-MM-DD
// for a single day or from=YYYY-MM-DD&to=YYYY-MM-DD for a range; each
// result carries the movie title and the live count of unclaimed seats.
func (h *ShowtimeHandler) Search(c echo.Context) error {
	var from, to time.Time
	switch {
	case c.QueryParam("date") != "":
		day, err := time.Parse("2006-01-02", c.QueryParam("date"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format, use YYYY-MM-DD"})
		}
		from = day
		to = day.Add(24*time.Hour - time.Second)
	case c.QueryParam("from") != "" && c.QueryParam("to") != "":
		var err error
		from, err = time.Parse("2006-01-02", c.QueryParam("from"))
		if err == nil {
			to, err = time.Parse("2006-01-02", c.QueryParam("to"))
		}
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format, use YYYY-MM-DD"})
		}
		to = to.Add(24*time.Hour - time.Second)
		if to.Before(from) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "'to' must not precede 'from'"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date or from/to parameters required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Showtimes.Search(ctx, from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Delete handles DELETE /v1/showtimes/:id (admin); refused while active
// reservations exist.
func (h *ShowtimeHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Showtimes.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "showtime deleted"})
}
