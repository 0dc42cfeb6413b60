package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cinereserve/booking-api/internal/model"
)

// MovieRepo provides CRUD and search over the movies table.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span repositories.
func (r *MovieRepo) DB() *sql.DB { return r.db }

const movieCols = "id, title, description, genre, poster_url, release_date, created_at, updated_at"

// Create inserts a movie and returns its generated ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movies (title, description, genre, release_date) VALUES (?,?,?,?)",
		m.Title, m.Description, m.Genre, m.ReleaseDate.Format("2006-01-02"))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID returns a single movie or sql.ErrNoRows.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	var m model.Movie
	var poster sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT "+movieCols+" FROM movies WHERE id=? LIMIT 1", id).
		Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &poster, &m.ReleaseDate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Movie{}, err
	}
	if poster.Valid {
		p := poster.String
		m.PosterURL = &p
	}
	return m, nil
}

// MovieUpdate carries the optional fields of a partial update. Nil pointers
// leave the stored value untouched.
type MovieUpdate struct {
	Title       *string
	Description *string
	Genre       *string
	PosterURL   *string
	ReleaseDate *string // YYYY-MM-DD, validated by the handler
}

// Update applies a partial update. Returns sql.ErrNoRows when the movie
// does not exist.
func (r *MovieRepo) Update(ctx context.Context, id uint64, upd MovieUpdate) error {
	sets := []string{}
	args := []any{}
	if upd.Title != nil {
		sets = append(sets, "title=?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description=?")
		args = append(args, *upd.Description)
	}
	if upd.Genre != nil {
		sets = append(sets, "genre=?")
		args = append(args, *upd.Genre)
	}
	if upd.PosterURL != nil {
		sets = append(sets, "poster_url=?")
		args = append(args, *upd.PosterURL)
	}
	if upd.ReleaseDate != nil {
		sets = append(sets, "release_date=?")
		args = append(args, *upd.ReleaseDate)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		"UPDATE movies SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM movies WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a movie. It fails with ErrConflict when any of the movie's
// showtimes still has an active reservation, and sql.ErrNoRows when the
// movie does not exist. Seats and showtimes without live bookings are
// removed along with the movie.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
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
		"SELECT 1 FROM movies WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
		return err
	}
	var live int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations r
		 JOIN showtimes s ON s.id = r.showtime_id
		 WHERE s.movie_id = ? AND r.status = ?`, id, model.ReservationActive).Scan(&live)
	if err != nil {
		return err
	}
	if live > 0 {
		return ErrConflict
	}
	for _, q := range []string{
		`DELETE sc FROM seat_claims sc
		 JOIN showtimes s ON s.id = sc.showtime_id WHERE s.movie_id = ?`,
		`DELETE r FROM reservations r
		 JOIN showtimes s ON s.id = r.showtime_id WHERE s.movie_id = ?`,
		`DELETE se FROM seats se
		 JOIN showtimes s ON s.id = se.showtime_id WHERE s.movie_id = ?`,
		`DELETE FROM showtimes WHERE movie_id = ?`,
		`DELETE FROM movies WHERE id = ?`,
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

// List returns one page of movies ordered by release date (newest first)
// along with the total row count for pagination.
func (r *MovieRepo) List(ctx context.Context, page, perPage int) ([]model.Movie, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * perPage
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+movieCols+" FROM movies ORDER BY release_date DESC, id DESC LIMIT ? OFFSET ?",
		perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	movies, err := scanMovies(rows)
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// Search filters by case-insensitive substring match on title and/or genre.
// Empty filters match everything.
func (r *MovieRepo) Search(ctx context.Context, title, genre string) ([]model.Movie, error) {
	where := []string{"1=1"}
	args := []any{}
	if title != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(title)+"%")
	}
	if genre != "" {
		where = append(where, "LOWER(genre) LIKE ?")
		args = append(args, "%"+strings.ToLower(genre)+"%")
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+movieCols+" FROM movies WHERE "+strings.Join(where, " AND ")+" ORDER BY title",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMovies(rows)
}

func scanMovies(rows *sql.Rows) ([]model.Movie, error) {
	out := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		var poster sql.NullString
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Genre, &poster,
			&m.ReleaseDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		if poster.Valid {
			p := poster.String
			m.PosterURL = &p
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetPosterURL stores the public URL of an uploaded poster.
func (r *MovieRepo) SetPosterURL(ctx context.Context, id uint64, url string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE movies SET poster_url=? WHERE id=?", url, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM movies WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
			return err
		}
	}
	return nil
}
