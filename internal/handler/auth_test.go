package handler

import (
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinereserve/booking-api/internal/config"
	"github.com/cinereserve/booking-api/internal/notify"
	"github.com/cinereserve/booking-api/internal/repository"
)

// Validation runs before any repository call, so these tests exercise the
// reject paths with repositories that have no database behind them.
func newAuthHandlerForValidation() *AuthHandler {
	return NewAuthHandler(config.Config{BcryptCost: 4},
		repository.NewUserRepo(nil), repository.NewTokenRepo(nil),
		&notify.LogSender{Log: zerolog.Nop()}, zerolog.Nop())
}

func TestRegisterRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty username", `{"username":"","email":"a@b.com","password":"secret1"}`},
		{"long username", `{"username":"` + strings81() + `","email":"a@b.com","password":"secret1"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"secret1"}`},
		{"short password", `{"username":"alice","email":"a@b.com","password":"12345"}`},
		{"malformed json", `{"username":`},
	}
	h := newAuthHandlerForValidation()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "/v1/auth/register", tc.body)
			require.NoError(t, h.Register(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func strings81() string {
	s := make([]byte, 81)
	for i := range s {
		s[i] = 'x'
	}
	return string(s)
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	h := newAuthHandlerForValidation()
	for _, body := range []string{
		`{"username":"","password":"secret1"}`,
		`{"username":"alice","password":""}`,
		`{}`,
	} {
		c, rec := newTestContext(http.MethodPost, "/v1/auth/login", body)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestRefreshRejectsMissingToken(t *testing.T) {
	h := newAuthHandlerForValidation()
	c, rec := newTestContext(http.MethodPost, "/v1/auth/refresh", `{}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
