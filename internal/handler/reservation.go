package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cinereserve/booking-api/internal/config"
	"github.com/cinereserve/booking-api/internal/model"
	"github.com/cinereserve/booking-api/internal/queue"
	"github.com/cinereserve/booking-api/internal/repository"
)

// ReservationHandler implements booking, cancellation and listing. Booking
// claims every requested seat inside one store transaction; the whole
// request succeeds or nothing is written.
type ReservationHandler struct {
	Cfg          config.Config
	Store        repository.BookingStore
	Reservations *repository.ReservationRepo
	Movies       *repository.MovieRepo
	Users        *repository.UserRepo
	Log          zerolog.Logger

	// confirmed runs after a successful commit; defaults to publishing the
	// confirmation event to the broker.
	confirmed func(res model.Reservation, showtime model.Showtime, labels []string)
}

func NewReservationHandler(cfg config.Config, store repository.BookingStore, res *repository.ReservationRepo,
	movies *repository.MovieRepo, users *repository.UserRepo, log zerolog.Logger) *ReservationHandler {
	if store == nil || res == nil || movies == nil || users == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	h := &ReservationHandler{
		Cfg:          cfg,
		Store:        store,
		Reservations: res,
		Movies:       movies,
		Users:        users,
		Log:          log,
	}
	h.confirmed = h.publishConfirmed
	return h
}

type createReservationReq struct {
	ShowtimeID uint64   `json:"showtime_id"`
	SeatLabels []string `json:"seat_labels"`
}

// Create handles POST /v1/reservations. The requested seat rows are locked
// for the duration of the transaction, so two overlapping requests for the
// same seat serialize at the database and the loser sees a conflict naming
// the contested labels. The unique key on seat_claims backs the locks up
// across instances.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ShowtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id is required"})
	}
	labels := model.NormalizeSeatLabels(req.SeatLabels)
	if len(labels) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_labels is required"})
	}
	for _, l := range labels {
		if _, _, err := model.ParseSeatLabel(l); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "seat": l})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Store.Begin(ctx)
	if err != nil {
		return fail(c, err)
	}
	defer tx.Rollback()

	showtime, err := tx.Showtime(ctx, req.ShowtimeID)
	if err != nil {
		return fail(c, err)
	}
	if !showtime.StartTime.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime has already started"})
	}

	seatIDs, err := tx.LockSeats(ctx, showtime.ID, labels)
	if err != nil {
		return fail(c, err)
	}
	ids := make([]uint64, 0, len(labels))
	for _, l := range labels {
		ids = append(ids, seatIDs[l])
	}
	claimed, err := tx.ClaimedLabels(ctx, ids)
	if err != nil {
		return fail(c, err)
	}
	if len(claimed) > 0 {
		return fail(c, &repository.SeatConflictError{Labels: claimed})
	}

	res := model.Reservation{
		UserID:          userID,
		ShowtimeID:      showtime.ID,
		TotalPriceCents: model.TotalPriceCents(len(labels), h.Cfg.UnitPriceCents),
	}
	if err := tx.InsertReservation(ctx, &res); err != nil {
		return fail(c, err)
	}
	if err := tx.InsertClaims(ctx, res.ID, showtime.ID, ids, labels); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}

	h.Log.Info().
		Uint64("reservation_id", res.ID).
		Uint64("user_id", userID).
		Uint64("showtime_id", showtime.ID).
		Strs("seats", labels).
		Msg("reservation created")

	go h.confirmed(res, showtime, labels)

	return c.JSON(http.StatusCreated, echo.Map{
		"id":                res.ID,
		"showtime_id":       showtime.ID,
		"status":            res.Status,
		"seats":             labels,
		"total_price_cents": res.TotalPriceCents,
		"created_at":        res.CreatedAt,
	})
}

// publishConfirmed enriches the committed reservation with user and movie
// data and hands it to the broker. Failures are logged and swallowed; the
// booking itself already succeeded.
func (h *ReservationHandler) publishConfirmed(res model.Reservation, showtime model.Showtime, labels []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, res.UserID)
	if err != nil {
		h.Log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("confirmation event: load user failed")
		return
	}
	movie, err := h.Movies.GetByID(ctx, showtime.MovieID)
	if err != nil {
		h.Log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("confirmation event: load movie failed")
		return
	}
	event := queue.ReservationConfirmedEvent{
		ReservationID:   res.ID,
		UserID:          user.ID,
		Username:        user.Username,
		Email:           user.Email,
		ShowtimeID:      showtime.ID,
		MovieTitle:      movie.Title,
		StartTime:       showtime.StartTime.UTC().Format(time.RFC3339),
		SeatLabels:      labels,
		TotalPriceCents: res.TotalPriceCents,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue.PublishReservationConfirmed(ctx, h.Log, event); err != nil {
		h.Log.Warn().Err(err).Uint64("reservation_id", res.ID).Msg("confirmation event: publish failed")
	}
}

// Cancel handles DELETE /v1/reservations/:id. Only the owning user may
// cancel, unless admin override is on; upcoming showtimes only, and only
// while the reservation is still active.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Store.Begin(ctx)
	if err != nil {
		return fail(c, err)
	}
	defer tx.Rollback()

	res, startTime, err := tx.ReservationForUpdate(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if res.UserID != userID && !(h.Cfg.AdminOverride && callerIsAdmin(c)) {
		return fail(c, repository.ErrForbidden)
	}
	if res.Status != model.ReservationActive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation is not active"})
	}
	if !startTime.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime has already started"})
	}
	if err := tx.CancelReservation(ctx, id); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}

	h.Log.Info().
		Uint64("reservation_id", id).
		Uint64("user_id", userID).
		Msg("reservation cancelled")

	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled", "id": id})
}

// ListMine handles GET /v1/reservations; the caller's own reservations,
// newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Reservations.ListByUser(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, details)
}
