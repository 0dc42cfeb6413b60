// Package handler implements the HTTP endpoints. Handlers assume JWT
// authentication and role checks have already run in middleware; they bind
// and validate input, orchestrate repositories (opening transactions where
// atomicity matters), and translate domain errors into HTTP responses.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/cinereserve/booking-api/internal/middleware"
	"github.com/cinereserve/booking-api/internal/model"
	"github.com/cinereserve/booking-api/internal/repository"
)

// emailRe is the same permissive check the registration form uses: one '@',
// something before it, a dot somewhere after it.
var emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

func validEmail(s string) bool { return emailRe.MatchString(s) }

// callerID extracts the authenticated user's ID stored by the JWT
// middleware.
func callerID(c echo.Context) (uint64, error) {
	id, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok || id == 0 {
		return 0, errors.New("no authenticated user in context")
	}
	return id, nil
}

// callerIsAdmin reports whether the request carries the admin role.
func callerIsAdmin(c echo.Context) bool {
	role, _ := c.Get(middleware.CtxRole).(string)
	return role == model.RoleAdmin
}

// fail maps a domain error onto the HTTP taxonomy: ValidationError 400,
// NotFound 404, Forbidden 403, Conflict 409, InvalidState 400, anything
// unrecognized 500 with a generic message so internals never leak.
func fail(c echo.Context, err error) error {
	var conflict *repository.SeatConflictError
	var missing *repository.SeatsNotFoundError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.As(err, &missing):
		return c.JSON(http.StatusNotFound, echo.Map{"error": missing.Error(), "seats": missing.Labels})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error(), "seats": conflict.Labels})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflicting reservations exist"})
	case errors.Is(err, repository.ErrInvalidState):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrUsernameExists),
		errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, model.ErrBadSeatLabel):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
