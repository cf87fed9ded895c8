package mail

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/submate-app/SubMate/internal/pkg/env"
)

// Mailer delivers a single HTML message to one recipient.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends emails via SMTP using the SMTP_* environment settings.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewSMTPMailer builds a mailer from the environment. SMTP_SENDER falls back
// to a no-reply address when unset.
func NewSMTPMailer() *SMTPMailer {
	host := env.GetEnv("SMTP_HOST", "localhost")
	port, err := strconv.Atoi(env.GetEnv("SMTP_PORT", "587"))
	if err != nil {
		port = 587
	}
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")

	sender := env.GetEnv("SMTP_SENDER", "")
	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", host)
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		sender: sender,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
