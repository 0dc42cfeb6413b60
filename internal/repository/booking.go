package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cinereserve/booking-api/internal/model"
)

// BookingStore opens booking transactions. The handler drives the claim and
// cancel flows through BookingTx so the orchestration can be tested against
// a fake store while production runs over MySQL.
type BookingStore interface {
	Begin(ctx context.Context) (BookingTx, error)
}

// BookingTx is one booking transaction. Every method runs inside the same
// database transaction; nothing is visible to other sessions until Commit.
// Implementations must tolerate Rollback after Commit so callers can defer
// it unconditionally.
type BookingTx interface {
	// Showtime loads the showtime being booked; sql.ErrNoRows when absent.
	Showtime(ctx context.Context, id uint64) (model.Showtime, error)
	// LockSeats resolves labels to seat IDs under row locks, failing with
	// SeatsNotFoundError when any label is unknown.
	LockSeats(ctx context.Context, showtimeID uint64, labels []string) (map[string]uint64, error)
	// ClaimedLabels returns the labels among seatIDs already claimed.
	ClaimedLabels(ctx context.Context, seatIDs []uint64) ([]string, error)
	// InsertReservation creates an active reservation, populating ID and
	// timestamps on res.
	InsertReservation(ctx context.Context, res *model.Reservation) error
	// InsertClaims writes one claim row per seat; a duplicate-key race
	// surfaces as SeatConflictError.
	InsertClaims(ctx context.Context, reservationID, showtimeID uint64, seatIDs []uint64, labels []string) error
	// ReservationForUpdate loads a reservation and its showtime start time
	// under a row lock.
	ReservationForUpdate(ctx context.Context, id uint64) (model.Reservation, time.Time, error)
	// CancelReservation flips the reservation to cancelled and releases its
	// seat claims.
	CancelReservation(ctx context.Context, id uint64) error

	Commit() error
	Rollback() error
}

// SQLBookingStore is the MySQL BookingStore; it stitches the repo *Tx
// methods into one transaction per booking request.
type SQLBookingStore struct {
	db           *sql.DB
	reservations *ReservationRepo
	seats        *SeatRepo
	showtimes    *ShowtimeRepo
}

func NewBookingStore(db *sql.DB, reservations *ReservationRepo, seats *SeatRepo, showtimes *ShowtimeRepo) *SQLBookingStore {
	if db == nil || reservations == nil || seats == nil || showtimes == nil {
		panic("nil dependency passed to NewBookingStore")
	}
	return &SQLBookingStore{db: db, reservations: reservations, seats: seats, showtimes: showtimes}
}

func (s *SQLBookingStore) Begin(ctx context.Context) (BookingTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlBookingTx{tx: tx, store: s}, nil
}

type sqlBookingTx struct {
	tx    *sql.Tx
	store *SQLBookingStore
	done  bool
}

func (b *sqlBookingTx) Showtime(ctx context.Context, id uint64) (model.Showtime, error) {
	return b.store.showtimes.GetTx(ctx, b.tx, id)
}

func (b *sqlBookingTx) LockSeats(ctx context.Context, showtimeID uint64, labels []string) (map[string]uint64, error) {
	return b.store.seats.LockByLabelsTx(ctx, b.tx, showtimeID, labels)
}

func (b *sqlBookingTx) ClaimedLabels(ctx context.Context, seatIDs []uint64) ([]string, error) {
	return b.store.reservations.ClaimedLabelsTx(ctx, b.tx, seatIDs)
}

func (b *sqlBookingTx) InsertReservation(ctx context.Context, res *model.Reservation) error {
	return b.store.reservations.CreateTx(ctx, b.tx, res)
}

func (b *sqlBookingTx) InsertClaims(ctx context.Context, reservationID, showtimeID uint64, seatIDs []uint64, labels []string) error {
	return b.store.reservations.CreateClaimsBulkTx(ctx, b.tx, reservationID, showtimeID, seatIDs, labels)
}

func (b *sqlBookingTx) ReservationForUpdate(ctx context.Context, id uint64) (model.Reservation, time.Time, error) {
	return b.store.reservations.GetForUpdateTx(ctx, b.tx, id)
}

func (b *sqlBookingTx) CancelReservation(ctx context.Context, id uint64) error {
	return b.store.reservations.CancelTx(ctx, b.tx, id)
}

func (b *sqlBookingTx) Commit() error {
	b.done = true
	return b.tx.Commit()
}

func (b *sqlBookingTx) Rollback() error {
	if b.done {
		return nil
	}
	return b.tx.Rollback()
}
