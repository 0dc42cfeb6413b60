// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into notifications.
package queue

// ReservationConfirmedEvent is published after a reservation commits. It
// carries everything the consumer needs to compose the confirmation email
// without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID   uint64   `json:"reservation_id"`
	UserID          uint64   `json:"user_id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	ShowtimeID      uint64   `json:"showtime_id"`
	MovieTitle      string   `json:"movie_title"`
	StartTime       string   `json:"start_time"`
	SeatLabels      []string `json:"seats"`
	TotalPriceCents uint32   `json:"total_price_cents"`
	ConfirmedAt     string   `json:"confirmed_at"`
}
