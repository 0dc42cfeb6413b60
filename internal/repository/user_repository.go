package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cinereserve/booking-api/internal/auth"
	"github.com/cinereserve/booking-api/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,username,email,password_hash,role,created_at,updated_at"

// Create inserts a user with a freshly hashed password and returns its ID.
// Username and email collisions surface as ErrUsernameExists /
// ErrEmailExists based on which unique key the database rejected.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)",
		username, email, hash, model.RoleUser)
	if err != nil {
		if isDuplicateKey(err) {
			if strings.Contains(err.Error(), "uq_users_email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user for login. Returns sql.ErrNoRows when the
// username is unknown.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE username=? LIMIT 1",
		strings.TrimSpace(username)).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1",
		id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Promote flips a user's role to admin. Returns sql.ErrNoRows when the user
// does not exist. Promoting an admin again is a no-op that still succeeds.
func (r *UserRepo) Promote(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", model.RoleAdmin, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "absent" from "already admin".
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&exists); err != nil {
			return err
		}
	}
	return nil
}
