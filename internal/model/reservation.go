package model

import "time"

// Reservation status values. A reservation is created active and the only
// transition is active -> cancelled; cancelled is terminal.
const (
	ReservationActive    = "active"
	ReservationCancelled = "cancelled"
)

// Reservation records a user's booking for a specific showtime. It
// aggregates one or more seats claimed in a single transaction and tracks
// the overall status and total price.
//
// Fields:
//
//	ID              – primary key identifier.
//	UserID          – user who made the reservation.
//	ShowtimeID      – showtime being reserved.
//	Status          – "active" or "cancelled".
//	TotalPriceCents – seat count times the unit price, in cents.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	UserID          uint64    // reservations.user_id
	ShowtimeID      uint64    // reservations.showtime_id
	Status          string    // reservations.status
	TotalPriceCents uint32    // reservations.total_price_cents
	CreatedAt       time.Time // reservations.created_at
	UpdatedAt       time.Time // reservations.updated_at
}

// TotalPriceCents computes the price of a reservation covering seatCount
// seats at the given unit price. Kept as a function so the handler, the
// report and the tests agree on the arithmetic.
func TotalPriceCents(seatCount int, unitPriceCents uint32) uint32 {
	return uint32(seatCount) * unitPriceCents
}
