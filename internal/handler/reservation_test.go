package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinereserve/booking-api/internal/config"
	"github.com/cinereserve/booking-api/internal/middleware"
	"github.com/cinereserve/booking-api/internal/model"
	"github.com/cinereserve/booking-api/internal/repository"
)

// fakeBookingStore is an in-memory BookingStore. Writes are buffered per
// transaction and applied on Commit, so all-or-nothing behavior can be
// asserted by inspecting the store after a failed request.
type fakeBookingStore struct {
	showtimes    map[uint64]model.Showtime
	seats        map[uint64]map[string]uint64 // showtime -> label -> seat id
	claims       map[uint64]string            // seat id -> label, live claims only
	claimOwner   map[uint64]uint64            // seat id -> reservation id
	reservations map[uint64]model.Reservation
	nextID       uint64

	insertClaimsErr error // forced failure simulating a lost unique-index race
	commits         int
	rollbacks       int
}

func newFakeBookingStore() *fakeBookingStore {
	start := time.Now().UTC().Add(24 * time.Hour)
	return &fakeBookingStore{
		showtimes: map[uint64]model.Showtime{
			1: {ID: 1, MovieID: 1, StartTime: start, DurationMin: 120},
		},
		seats: map[uint64]map[string]uint64{
			1: {"A1": 11, "A2": 12, "B1": 13},
		},
		claims:       map[uint64]string{},
		claimOwner:   map[uint64]uint64{},
		reservations: map[uint64]model.Reservation{},
	}
}

func (s *fakeBookingStore) Begin(ctx context.Context) (repository.BookingTx, error) {
	return &fakeBookingTx{s: s, pendingClaims: map[uint64]string{}}, nil
}

type fakeBookingTx struct {
	s             *fakeBookingStore
	committed     bool
	pendingRes    *model.Reservation
	pendingClaims map[uint64]string
	pendingCancel uint64
}

func (t *fakeBookingTx) Showtime(ctx context.Context, id uint64) (model.Showtime, error) {
	st, ok := t.s.showtimes[id]
	if !ok {
		return model.Showtime{}, sql.ErrNoRows
	}
	return st, nil
}

func (t *fakeBookingTx) LockSeats(ctx context.Context, showtimeID uint64, labels []string) (map[string]uint64, error) {
	byLabel := t.s.seats[showtimeID]
	found := make(map[string]uint64, len(labels))
	var missing []string
	for _, l := range labels {
		if id, ok := byLabel[l]; ok {
			found[l] = id
		} else {
			missing = append(missing, l)
		}
	}
	if len(missing) > 0 {
		return nil, &repository.SeatsNotFoundError{Labels: missing}
	}
	return found, nil
}

func (t *fakeBookingTx) ClaimedLabels(ctx context.Context, seatIDs []uint64) ([]string, error) {
	var out []string
	for _, id := range seatIDs {
		if label, ok := t.s.claims[id]; ok {
			out = append(out, label)
		}
	}
	return out, nil
}

func (t *fakeBookingTx) InsertReservation(ctx context.Context, res *model.Reservation) error {
	t.s.nextID++
	res.ID = t.s.nextID
	res.Status = model.ReservationActive
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	t.pendingRes = res
	return nil
}

func (t *fakeBookingTx) InsertClaims(ctx context.Context, reservationID, showtimeID uint64, seatIDs []uint64, labels []string) error {
	if t.s.insertClaimsErr != nil {
		return t.s.insertClaimsErr
	}
	for i, id := range seatIDs {
		if _, taken := t.s.claims[id]; taken {
			return &repository.SeatConflictError{Labels: labels}
		}
		t.pendingClaims[id] = labels[i]
	}
	return nil
}

func (t *fakeBookingTx) ReservationForUpdate(ctx context.Context, id uint64) (model.Reservation, time.Time, error) {
	res, ok := t.s.reservations[id]
	if !ok {
		return model.Reservation{}, time.Time{}, sql.ErrNoRows
	}
	return res, t.s.showtimes[res.ShowtimeID].StartTime, nil
}

func (t *fakeBookingTx) CancelReservation(ctx context.Context, id uint64) error {
	t.pendingCancel = id
	return nil
}

func (t *fakeBookingTx) Commit() error {
	if t.pendingRes != nil {
		t.s.reservations[t.pendingRes.ID] = *t.pendingRes
	}
	for seatID, label := range t.pendingClaims {
		t.s.claims[seatID] = label
		if t.pendingRes != nil {
			t.s.claimOwner[seatID] = t.pendingRes.ID
		}
	}
	if t.pendingCancel != 0 {
		res := t.s.reservations[t.pendingCancel]
		res.Status = model.ReservationCancelled
		t.s.reservations[t.pendingCancel] = res
		for seatID, owner := range t.s.claimOwner {
			if owner == t.pendingCancel {
				delete(t.s.claims, seatID)
				delete(t.s.claimOwner, seatID)
			}
		}
	}
	t.committed = true
	t.s.commits++
	return nil
}

func (t *fakeBookingTx) Rollback() error {
	if !t.committed {
		t.s.rollbacks++
	}
	return nil
}

func newBookingHandler(store *fakeBookingStore) *ReservationHandler {
	h := NewReservationHandler(config.Config{UnitPriceCents: 1000, AdminOverride: true},
		store, repository.NewReservationRepo(nil), repository.NewMovieRepo(nil),
		repository.NewUserRepo(nil), zerolog.Nop())
	h.confirmed = func(model.Reservation, model.Showtime, []string) {}
	return h
}

func bookSeats(t *testing.T, h *ReservationHandler, userID uint64, body string) (int, map[string]any) {
	t.Helper()
	c, rec := newTestContext(http.MethodPost, "/v1/reservations", body)
	c.Set(middleware.CtxUserID, userID)
	require.NoError(t, h.Create(c))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func cancelReservation(t *testing.T, h *ReservationHandler, userID uint64, role, id string) int {
	t.Helper()
	c, rec := newTestContext(http.MethodDelete, "/v1/reservations/"+id, "")
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set(middleware.CtxUserID, userID)
	if role != "" {
		c.Set(middleware.CtxRole, role)
	}
	require.NoError(t, h.Cancel(c))
	return rec.Code
}

func TestCreateReservationSuccess(t *testing.T) {
	store := newFakeBookingStore()
	h := newBookingHandler(store)

	code, resp := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["a1","A2"]}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, model.ReservationActive, resp["status"])
	assert.Equal(t, []any{"A1", "A2"}, resp["seats"])
	assert.Equal(t, float64(2000), resp["total_price_cents"])
	assert.Equal(t, 1, store.commits)
	assert.Len(t, store.claims, 2)
}

func TestCreateReservationOverlapConflict(t *testing.T) {
	store := newFakeBookingStore()
	h := newBookingHandler(store)

	code, _ := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["A1","A2"]}`)
	require.Equal(t, http.StatusCreated, code)

	// Second booking overlaps on A2 only; the conflict names exactly the
	// contested seat and claims nothing.
	code, resp := bookSeats(t, h, 6, `{"showtime_id":1,"seat_labels":["A2","B1"]}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, []any{"A2"}, resp["seats"])
	assert.Len(t, store.claims, 2, "loser must claim zero seats")
	assert.Equal(t, 1, store.commits)
	assert.Equal(t, 1, store.rollbacks)
	_, b1Claimed := store.claims[13]
	assert.False(t, b1Claimed, "uncontested seat must not be claimed either")
}

func TestCreateReservationDuplicateKeyRace(t *testing.T) {
	store := newFakeBookingStore()
	// The claims check passed but the insert loses the race; the unique
	// index rejection must surface as a 409 with nothing committed.
	store.insertClaimsErr = &repository.SeatConflictError{Labels: []string{"A1"}}
	h := newBookingHandler(store)

	code, resp := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["A1"]}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, []any{"A1"}, resp["seats"])
	assert.Zero(t, store.commits)
	assert.Equal(t, 1, store.rollbacks)
	assert.Empty(t, store.claims)
}

func TestCreateReservationUnknownSeats(t *testing.T) {
	store := newFakeBookingStore()
	h := newBookingHandler(store)

	code, resp := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["A1","Z9"]}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, []any{"Z9"}, resp["seats"])
	assert.Empty(t, store.claims)
}

func TestCreateReservationUnknownShowtime(t *testing.T) {
	store := newFakeBookingStore()
	h := newBookingHandler(store)

	code, _ := bookSeats(t, h, 5, `{"showtime_id":42,"seat_labels":["A1"]}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateReservationPastShowtime(t *testing.T) {
	store := newFakeBookingStore()
	st := store.showtimes[1]
	st.StartTime = time.Now().UTC().Add(-time.Hour)
	store.showtimes[1] = st
	h := newBookingHandler(store)

	code, _ := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["A1"]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Empty(t, store.claims)
}

func TestCancelThenRebookSucceeds(t *testing.T) {
	store := newFakeBookingStore()
	h := newBookingHandler(store)

	code, resp := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["A1","A2"]}`)
	require.Equal(t, http.StatusCreated, code)
	resID := uint64(resp["id"].(float64))

	require.Equal(t, http.StatusOK, cancelReservation(t, h, 5, "", "1"))
	assert.Empty(t, store.claims, "cancel must release every claim")
	assert.Equal(t, model.ReservationCancelled, store.reservations[resID].Status)

	// The released seats are bookable again, by anyone.
	code, _ = bookSeats(t, h, 6, `{"showtime_id":1,"seat_labels":["A1","A2"]}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Len(t, store.claims, 2)
}

func TestCancelCancelledReservation(t *testing.T) {
	store := newFakeBookingStore()
	h := newBookingHandler(store)

	code, _ := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["A1"]}`)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, http.StatusOK, cancelReservation(t, h, 5, "", "1"))

	assert.Equal(t, http.StatusBadRequest, cancelReservation(t, h, 5, "", "1"))
}

func TestCancelForeignReservation(t *testing.T) {
	store := newFakeBookingStore()
	h := newBookingHandler(store)

	code, _ := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["A1"]}`)
	require.Equal(t, http.StatusCreated, code)

	assert.Equal(t, http.StatusForbidden, cancelReservation(t, h, 6, model.RoleUser, "1"))
	assert.Len(t, store.claims, 1)

	// Admin override allows cancelling on behalf of the user.
	assert.Equal(t, http.StatusOK, cancelReservation(t, h, 6, model.RoleAdmin, "1"))
	assert.Empty(t, store.claims)
}

func TestCancelPastShowtime(t *testing.T) {
	store := newFakeBookingStore()
	h := newBookingHandler(store)

	code, _ := bookSeats(t, h, 5, `{"showtime_id":1,"seat_labels":["A1"]}`)
	require.Equal(t, http.StatusCreated, code)

	st := store.showtimes[1]
	st.StartTime = time.Now().UTC().Add(-time.Hour)
	store.showtimes[1] = st

	assert.Equal(t, http.StatusBadRequest, cancelReservation(t, h, 5, "", "1"))
	assert.Len(t, store.claims, 1, "claims of past showtimes stay recorded")
}

func TestCreateReservationRequiresAuth(t *testing.T) {
	h := newBookingHandler(newFakeBookingStore())
	c, rec := newTestContext(http.MethodPost, "/v1/reservations", `{"showtime_id":1,"seat_labels":["A1"]}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservationRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing showtime", `{"seat_labels":["A1"]}`},
		{"no seats", `{"showtime_id":1,"seat_labels":[]}`},
		{"blank seats", `{"showtime_id":1,"seat_labels":["  ",""]}`},
		{"bad label", `{"showtime_id":1,"seat_labels":["11"]}`},
		{"malformed json", `{"showtime_id":`},
	}
	store := newFakeBookingStore()
	h := newBookingHandler(store)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "/v1/reservations", tc.body)
			c.Set(middleware.CtxUserID, uint64(5))
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Empty(t, store.claims)
}

func TestCancelReservationRejectsBadID(t *testing.T) {
	h := newBookingHandler(newFakeBookingStore())
	for _, id := range []string{"0", "abc", "-3"} {
		c, rec := newTestContext(http.MethodDelete, "/v1/reservations/"+id, "")
		c.SetParamNames("id")
		c.SetParamValues(id)
		c.Set(middleware.CtxUserID, uint64(5))
		require.NoError(t, h.Cancel(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "id %q", id)
	}
}

func TestSeatBulkCreateRejectsBadInput(t *testing.T) {
	h := NewSeatHandler(repository.NewSeatRepo(nil), repository.NewShowtimeRepo(nil))

	c, rec := newTestContext(http.MethodPost, "/v1/showtimes/abc/seats", `{"seat_labels":["A1"]}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.CreateBulk(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/v1/showtimes/1/seats", `{"seat_labels":[]}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.CreateBulk(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
