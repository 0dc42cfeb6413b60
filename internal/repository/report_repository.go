package repository

import (
	"context"
	"database/sql"

	"github.com/cinereserve/booking-api/internal/model"
)

// Report is the admin snapshot of booking activity. Only active
// reservations are counted: cancelled bookings hold no seats and produced
// no revenue, so they contribute to none of the figures.
type Report struct {
	TotalReservations int64  `json:"total_reservations"`
	TicketsSold       int64  `json:"tickets_sold"`
	RevenueCents      uint64 `json:"revenue_cents"`
}

// BuildReport derives the revenue figure from the ticket count so the two
// can never drift apart.
func BuildReport(totalReservations, ticketsSold int64, unitPriceCents uint32) Report {
	return Report{
		TotalReservations: totalReservations,
		TicketsSold:       ticketsSold,
		RevenueCents:      uint64(ticketsSold) * uint64(unitPriceCents),
	}
}

// ReportRepo computes the admin report. Figures are read fresh on every
// call in a single query, so they are internally consistent at the store's
// isolation level.
type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Generate counts active reservations and sums their seat claims, then
// prices the tickets at the configured unit price.
func (r *ReportRepo) Generate(ctx context.Context, unitPriceCents uint32) (Report, error) {
	const q = `SELECT COUNT(DISTINCT r.id), COUNT(sc.id)
	           FROM reservations r
	           LEFT JOIN seat_claims sc ON sc.reservation_id = r.id
	           WHERE r.status = ?`
	var total, tickets int64
	if err := r.db.QueryRowContext(ctx, q, model.ReservationActive).Scan(&total, &tickets); err != nil {
		return Report{}, err
	}
	return BuildReport(total, tickets, unitPriceCents), nil
}
