package notify

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewSenderPicksImplementation(t *testing.T) {
	log := zerolog.Nop()
	assert.IsType(t, &LogSender{}, NewSender("", "noreply@example.com", log))
	assert.IsType(t, &SMTPSender{}, NewSender("mail.example.com:587", "noreply@example.com", log))
}

func TestLogSenderAlwaysSucceeds(t *testing.T) {
	s := &LogSender{Log: zerolog.Nop()}
	assert.NoError(t, s.Send("user@example.com", "subject", "body"))
}

func TestWelcomeBody(t *testing.T) {
	subject, body := WelcomeBody("alice")
	assert.Equal(t, "Welcome to Our Service", subject)
	assert.Contains(t, body, "alice")
}

func TestConfirmationBody(t *testing.T) {
	subject, body := ConfirmationBody("alice", "Blade Runner", "2026-09-01T20:00:00Z", []string{"A1", "A2"}, 2000)
	assert.Equal(t, "Reservation Confirmation", subject)
	assert.Contains(t, body, "Blade Runner")
	assert.Contains(t, body, "A1, A2")
	assert.Contains(t, body, "$20.00")
	assert.Contains(t, body, "2026-09-01T20:00:00Z")
}
