package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cinereserve/booking-api/internal/model"
)

// SeatRepo manages the seat inventory of showtimes. Seats are created by
// admins in bulk and never change label afterwards; availability is derived
// from seat_claims rather than stored on the seat row.
type SeatRepo struct {
	db *sql.DB
}

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulk inserts seats for a showtime in a single statement. Labels
// must already be normalized and parsed by the caller. A duplicate label
// within the showtime fails the whole batch with a SeatConflictError naming
// every label that already exists.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	existing, err := r.existingLabels(ctx, seats[0].ShowtimeID, labelsOf(seats))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return &SeatConflictError{Labels: existing}
	}
	query := "INSERT INTO seats (showtime_id, label, row_label, col_number) VALUES "
	args := make([]any, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.ShowtimeID, s.Label, s.RowLabel, s.ColNumber)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			// Lost a race with a concurrent insert of the same labels.
			return &SeatConflictError{Labels: labelsOf(seats)}
		}
		return err
	}
	return nil
}

func labelsOf(seats []model.Seat) []string {
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		out = append(out, s.Label)
	}
	return out
}

func (r *SeatRepo) existingLabels(ctx context.Context, showtimeID uint64, labels []string) ([]string, error) {
	placeholders := make([]string, len(labels))
	args := make([]any, 0, len(labels)+1)
	args = append(args, showtimeID)
	for i, l := range labels {
		placeholders[i] = "?"
		args = append(args, l)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT label FROM seats WHERE showtime_id=? AND label IN ("+strings.Join(placeholders, ",")+")",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListByShowtime returns every seat of a showtime ordered by row and
// column, with Booked derived from the presence of a live claim.
func (r *SeatRepo) ListByShowtime(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	const q = `SELECT se.id, se.showtime_id, se.label, se.row_label, se.col_number,
	                  sc.id IS NOT NULL AS booked, se.created_at
	           FROM seats se
	           LEFT JOIN seat_claims sc ON sc.seat_id = se.id
	           WHERE se.showtime_id = ?
	           ORDER BY se.row_label, se.col_number`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ShowtimeID, &s.Label, &s.RowLabel,
			&s.ColNumber, &s.Booked, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LockByLabelsTx resolves seat labels to seat IDs under FOR UPDATE row
// locks, serializing concurrent claims of the same seats against the lock
// rather than against the unique index alone. Labels that do not exist
// under the showtime fail the lookup with a SeatsNotFoundError listing
// every missing label.
func (r *SeatRepo) LockByLabelsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, labels []string) (map[string]uint64, error) {
	placeholders := make([]string, len(labels))
	args := make([]any, 0, len(labels)+1)
	args = append(args, showtimeID)
	for i, l := range labels {
		placeholders[i] = "?"
		args = append(args, l)
	}
	q := "SELECT id, label FROM seats WHERE showtime_id=? AND label IN (" +
		strings.Join(placeholders, ",") + ") FOR UPDATE"
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[string]uint64, len(labels))
	for rows.Next() {
		var id uint64
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, err
		}
		found[label] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(found) != len(labels) {
		missing := make([]string, 0, len(labels)-len(found))
		for _, l := range labels {
			if _, ok := found[l]; !ok {
				missing = append(missing, l)
			}
		}
		return nil, &SeatsNotFoundError{Labels: missing}
	}
	return found, nil
}
