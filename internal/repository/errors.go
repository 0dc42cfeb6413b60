// Package repository defines the persistence layer and the error values it
// shares with handlers. Sentinel errors let the HTTP layer distinguish
// failure scenarios without inspecting SQL details: ErrForbidden maps to
// 403, ErrInvalidState to 400, ErrConflict to 409, and sql.ErrNoRows from
// any lookup maps to 404.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as cancelling another user's reservation.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// existing dependent records, such as deleting a showtime that still has
// active reservations.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when an entity exists but is not in a state
// that permits the operation, such as cancelling an already-cancelled
// reservation.
var ErrInvalidState = errors.New("invalid state")

// ErrUsernameExists and ErrEmailExists flag registration against a taken
// identity. Handlers report both as validation failures.
var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// SeatConflictError reports that one or more requested seats are already
// held by an active reservation. Labels lists every conflicting seat so the
// client can re-pick precisely.
type SeatConflictError struct {
	Labels []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Labels, ", "))
}

// SeatsNotFoundError reports seat labels that do not exist under the
// requested showtime.
type SeatsNotFoundError struct {
	Labels []string
}

func (e *SeatsNotFoundError) Error() string {
	return fmt.Sprintf("unknown seats: %s", strings.Join(e.Labels, ", "))
}

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062). The driver does not export a typed error for it, so the
// check matches the code in the message the same way the rest of the
// codebase does.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
