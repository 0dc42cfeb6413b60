package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cinereserve/booking-api/internal/model"
)

// ReservationRepo provides persistence for reservations and their seat
// claims. A claim row exists exactly while its reservation is active, so
// "claimed" and "booked" are the same question. All timestamp fields are
// stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

func (r *ReservationRepo) DB() *sql.DB { return r.db }

// ClaimedLabelsTx returns the labels among seatIDs that already carry a
// live claim. The FOR SHARE clause forces a locking read of the latest
// committed claims rather than the transaction's snapshot, so a claim
// committed after this transaction began is still seen and reported as the
// precise conflicting label instead of being caught later by the unique
// index. Callers hold FOR UPDATE locks on the seat rows, so the answer
// cannot change before the transaction commits.
func (r *ReservationRepo) ClaimedLabelsTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(seatIDs))
	args := make([]any, len(seatIDs))
	for i, id := range seatIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	q := `SELECT se.label FROM seat_claims sc
	      JOIN seats se ON se.id = sc.seat_id
	      WHERE sc.seat_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY se.row_label, se.col_number
	      FOR SHARE`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// CreateTx inserts a new active reservation within the scope of an existing
// transaction and populates the generated ID and timestamps on the record.
// The caller must commit or roll back.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	result, err := tx.ExecContext(ctx,
		"INSERT INTO reservations (user_id, showtime_id, status, total_price_cents) VALUES (?,?,?,?)",
		res.UserID, res.ShowtimeID, model.ReservationActive, res.TotalPriceCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Status = model.ReservationActive
	return tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM reservations WHERE id=?", res.ID).
		Scan(&res.CreatedAt, &res.UpdatedAt)
}

// CreateClaimsBulkTx inserts one seat_claims row per seat in a single
// statement. The UNIQUE key on seat_id is the cross-instance backstop for
// the locking done earlier in the transaction: if another transaction
// slipped a claim in, the insert fails and the whole booking is rolled back
// as a conflict naming the requested labels.
func (r *ReservationRepo) CreateClaimsBulkTx(ctx context.Context, tx *sql.Tx, reservationID, showtimeID uint64, seatIDs []uint64, labels []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := "INSERT INTO seat_claims (reservation_id, showtime_id, seat_id) VALUES "
	args := make([]any, 0, len(seatIDs)*3)
	for i, id := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, reservationID, showtimeID, id)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return &SeatConflictError{Labels: labels}
		}
		return err
	}
	return nil
}

// GetForUpdateTx loads a reservation and its showtime start time under a
// row lock, for cancellation. Returns sql.ErrNoRows when absent.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, time.Time, error) {
	var res model.Reservation
	var start time.Time
	err := tx.QueryRowContext(ctx,
		`SELECT r.id, r.user_id, r.showtime_id, r.status, r.total_price_cents,
		        r.created_at, r.updated_at, s.start_time
		 FROM reservations r
		 JOIN showtimes s ON s.id = r.showtime_id
		 WHERE r.id = ? FOR UPDATE`, id).
		Scan(&res.ID, &res.UserID, &res.ShowtimeID, &res.Status, &res.TotalPriceCents,
			&res.CreatedAt, &res.UpdatedAt, &start)
	if err != nil {
		return model.Reservation{}, time.Time{}, err
	}
	return res, start, nil
}

// CancelTx flips an active reservation to cancelled and deletes its seat
// claims in the same transaction, releasing every seat atomically. The
// caller has already verified status and ownership.
func (r *ReservationRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE reservations SET status=? WHERE id=?", model.ReservationCancelled, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM seat_claims WHERE reservation_id=?", id)
	return err
}

// ReservationDetail is a reservation joined with its showtime, movie and
// seat labels, as returned to clients.
type ReservationDetail struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id,omitempty"`
	ShowtimeID      uint64    `json:"showtime_id"`
	MovieTitle      string    `json:"movie_title"`
	StartTime       time.Time `json:"start_time"`
	Status          string    `json:"status"`
	TotalPriceCents uint32    `json:"total_price_cents"`
	Seats           []string  `json:"seats"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListByUser returns the user's reservations newest first, each with its
// seat labels. Seats of cancelled reservations are resolved through the
// claims recorded at booking time no longer existing, so cancelled rows
// carry an empty seat list; callers that need the historical seats should
// keep the confirmation email.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	return r.list(ctx, "WHERE r.user_id = ?", userID)
}

// ListAll returns every reservation for the admin view, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]ReservationDetail, error) {
	return r.list(ctx, "")
}

func (r *ReservationRepo) list(ctx context.Context, cond string, args ...any) ([]ReservationDetail, error) {
	q := `SELECT r.id, r.user_id, r.showtime_id, m.title, s.start_time,
	             r.status, r.total_price_cents, r.created_at
	      FROM reservations r
	      JOIN showtimes s ON s.id = r.showtime_id
	      JOIN movies m ON m.id = s.movie_id ` + cond + `
	      ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.ShowtimeID, &d.MovieTitle,
			&d.StartTime, &d.Status, &d.TotalPriceCents, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Seats = []string{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	// Populate seat labels for all reservations in one query.
	ids := make([]any, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	seatQ := `SELECT sc.reservation_id, se.label
	          FROM seat_claims sc
	          JOIN seats se ON se.id = sc.seat_id
	          WHERE sc.reservation_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY sc.reservation_id, se.row_label, se.col_number`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var rid uint64
		var label string
		if err := srows.Scan(&rid, &label); err != nil {
			return nil, err
		}
		if idx, ok := index[rid]; ok {
			details[idx].Seats = append(details[idx].Seats, label)
		}
	}
	return details, srows.Err()
}
