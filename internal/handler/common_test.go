package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinereserve/booking-api/internal/middleware"
	"github.com/cinereserve/booking-api/internal/model"
	"github.com/cinereserve/booking-api/internal/repository"
)

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("user@example.com"))
	assert.True(t, validEmail("a.b+c@sub.example.org"))
	assert.False(t, validEmail("userexample.com"))
	assert.False(t, validEmail("user@example"))
	assert.False(t, validEmail("user@@example.com"))
	assert.False(t, validEmail(""))
}

func TestCallerID(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/", "")
	_, err := callerID(c)
	assert.Error(t, err)

	c.Set(middleware.CtxUserID, uint64(12))
	id, err := callerID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)
}

func TestCallerIsAdmin(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/", "")
	assert.False(t, callerIsAdmin(c))
	c.Set(middleware.CtxRole, model.RoleUser)
	assert.False(t, callerIsAdmin(c))
	c.Set(middleware.CtxRole, model.RoleAdmin)
	assert.True(t, callerIsAdmin(c))
}

func TestFailStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", sql.ErrNoRows, http.StatusNotFound},
		{"missing seats", &repository.SeatsNotFoundError{Labels: []string{"A9"}}, http.StatusNotFound},
		{"seat conflict", &repository.SeatConflictError{Labels: []string{"A1"}}, http.StatusConflict},
		{"forbidden", repository.ErrForbidden, http.StatusForbidden},
		{"conflict", repository.ErrConflict, http.StatusConflict},
		{"invalid state", repository.ErrInvalidState, http.StatusBadRequest},
		{"username taken", repository.ErrUsernameExists, http.StatusBadRequest},
		{"email taken", repository.ErrEmailExists, http.StatusBadRequest},
		{"bad seat label", model.ErrBadSeatLabel, http.StatusBadRequest},
		{"unknown", errors.New("driver blew up"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodGet, "/", "")
			require.NoError(t, fail(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestFailHidesInternalDetails(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/", "")
	require.NoError(t, fail(c, errors.New("dial tcp 10.0.0.5:3306: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "internal error")
}
