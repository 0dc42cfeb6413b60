package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cinereserve/booking-api/internal/model"
)

// ShowtimeRepo provides persistence for showtimes. Each showtime references
// an existing movie; the foreign key is verified explicitly so the handler
// can answer 404 instead of surfacing a constraint error.
type ShowtimeRepo struct {
	db *sql.DB
}

func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

func (r *ShowtimeRepo) DB() *sql.DB { return r.db }

// Create inserts a showtime and returns the generated ID. sql.ErrNoRows is
// returned when the movie does not exist.
func (r *ShowtimeRepo) Create(ctx context.Context, st *model.Showtime) error {
	var exists int
	if err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM movies WHERE id=? LIMIT 1", st.MovieID).Scan(&exists); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO showtimes (movie_id, start_time, duration_min) VALUES (?,?,?)",
		st.MovieID, st.StartTime.UTC().Format("2006-01-02 15:04:05"), st.DurationMin)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = uint64(id)
	return nil
}

// GetByID returns a showtime or sql.ErrNoRows.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (model.Showtime, error) {
	var st model.Showtime
	err := r.db.QueryRowContext(ctx,
		"SELECT id, movie_id, start_time, duration_min, created_at FROM showtimes WHERE id=? LIMIT 1",
		id).Scan(&st.ID, &st.MovieID, &st.StartTime, &st.DurationMin, &st.CreatedAt)
	return st, err
}

// GetTx is GetByID within an existing transaction; used by reservation
// creation so the showtime lookup shares the claim transaction.
func (r *ShowtimeRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Showtime, error) {
	var st model.Showtime
	err := tx.QueryRowContext(ctx,
		"SELECT id, movie_id, start_time, duration_min, created_at FROM showtimes WHERE id=? LIMIT 1",
		id).Scan(&st.ID, &st.MovieID, &st.StartTime, &st.DurationMin, &st.CreatedAt)
	return st, err
}

// ShowtimeRow is the search result shape returned to clients: showtime plus
// movie title and the number of seats not currently claimed.
type ShowtimeRow struct {
	ID             uint64    `json:"id"`
	MovieID        uint64    `json:"movie_id"`
	MovieTitle     string    `json:"movie_title"`
	StartTime      time.Time `json:"start_time"`
	DurationMin    uint32    `json:"duration_min"`
	AvailableSeats int64     `json:"available_seats"`
}

// Search returns showtimes between from and to (inclusive), newest last,
// joined with their movie and a live availability count. The availability
// subquery counts seats without a claim row, so it never disagrees with the
// reservation path.
func (r *ShowtimeRepo) Search(ctx context.Context, from, to time.Time) ([]ShowtimeRow, error) {
	const q = `SELECT s.id, s.movie_id, m.title, s.start_time, s.duration_min,
	                  (SELECT COUNT(*) FROM seats se
	                   LEFT JOIN seat_claims sc ON sc.seat_id = se.id
	                   WHERE se.showtime_id = s.id AND sc.id IS NULL) AS available_seats
	           FROM showtimes s
	           JOIN movies m ON m.id = s.movie_id
	           WHERE s.start_time >= ? AND s.start_time <= ?
	           ORDER BY s.start_time ASC`
	rows, err := r.db.QueryContext(ctx, q,
		from.UTC().Format("2006-01-02 15:04:05"),
		to.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ShowtimeRow, 0)
	for rows.Next() {
		var row ShowtimeRow
		if err := rows.Scan(&row.ID, &row.MovieID, &row.MovieTitle,
			&row.StartTime, &row.DurationMin, &row.AvailableSeats); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Delete removes a showtime together with its seats. It fails with
// ErrConflict when active reservations exist and sql.ErrNoRows when the
// showtime is unknown.
func (r *ShowtimeRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM showtimes WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
		return err
	}
	var live int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE showtime_id=? AND status=?",
		id, model.ReservationActive).Scan(&live); err != nil {
		return err
	}
	if live > 0 {
		return ErrConflict
	}
	for _, q := range []string{
		"DELETE FROM seat_claims WHERE showtime_id=?",
		"DELETE FROM reservations WHERE showtime_id=?",
		"DELETE FROM seats WHERE showtime_id=?",
		"DELETE FROM showtimes WHERE id=?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
