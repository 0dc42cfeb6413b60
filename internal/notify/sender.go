// Package notify delivers transactional email. Delivery is strictly
// best-effort: a failed send is logged and dropped, it never fails the
// operation that triggered it.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Sender delivers a single message to one recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers through a plain SMTP endpoint. No client library is
// pulled in for this; the message format is trivial and the interface keeps
// a provider SDK swappable in later.
type SMTPSender struct {
	Addr string // host:port
	From string
	Log  zerolog.Logger
}

func NewSMTPSender(addr, from string, log zerolog.Logger) *SMTPSender {
	return &SMTPSender{Addr: addr, From: from, Log: log}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(s.Addr, nil, s.From, []string{to}, []byte(msg)); err != nil {
		s.Log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("email delivery failed")
		return err
	}
	s.Log.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

// LogSender is used when SMTP is not configured: it records the message in
// the log and reports success, so local environments behave like delivery
// worked.
type LogSender struct {
	Log zerolog.Logger
}

func (s *LogSender) Send(to, subject, body string) error {
	s.Log.Info().Str("to", to).Str("subject", subject).Msg("email delivery disabled; logging only")
	return nil
}

// NewSender picks the SMTP implementation when an address is configured and
// the logging fallback otherwise.
func NewSender(addr, from string, log zerolog.Logger) Sender {
	if addr == "" {
		return &LogSender{Log: log}
	}
	return NewSMTPSender(addr, from, log)
}

// WelcomeBody composes the registration welcome mail.
func WelcomeBody(username string) (subject, body string) {
	return "Welcome to Our Service",
		fmt.Sprintf("Hello %s, thank you for registering!", username)
}

// ConfirmationBody composes the booking confirmation mail.
func ConfirmationBody(username, movieTitle, startTime string, seats []string, totalCents uint32) (subject, body string) {
	return "Reservation Confirmation", fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your reservation for '%s' on %s is confirmed.\n"+
			"Seats: %s\n"+
			"Amount: $%.2f\n\n"+
			"Thank you for choosing our cinema!",
		username, movieTitle, startTime, strings.Join(seats, ", "), float64(totalCents)/100)
}
