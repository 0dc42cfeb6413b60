package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinereserve/booking-api/internal/auth"
	"github.com/cinereserve/booking-api/internal/model"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := auth.NewAccessToken(testSecret, 99, model.RoleUser, 60)
	require.NoError(t, err)

	rec, c := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(99), c.Get(CtxUserID))
	assert.Equal(t, model.RoleUser, c.Get(CtxRole))
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := doRequest(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthBadToken(t *testing.T) {
	rec, _ := doRequest(t, JWTAuth(testSecret), "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := auth.NewAccessToken("another-secret", 99, model.RoleUser, 60)
	require.NoError(t, err)

	rec, _ := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func roleContext(role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/report", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(CtxRole, role)
	}
	return c, rec
}

func TestRequireRoleAllows(t *testing.T) {
	c, rec := roleContext(model.RoleAdmin)
	handler := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	c, rec := roleContext(model.RoleUser)
	handler := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	c, rec := roleContext("")
	handler := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
