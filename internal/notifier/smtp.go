package notifier

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Dialer sends messages over one SMTP session. *gomail.Dialer implements it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig holds the SMTP server and sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier sends reset links as plain text mail.
type SMTPNotifier struct {
	dialer Dialer
	from   string
}

// NewSMTPNotifier creates an SMTPNotifier. Port 465 uses implicit TLS.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	username := cfg.Username
	if username == "" {
		username = cfg.From
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, username, cfg.Password),
		from:   cfg.From,
	}
}

// NewSMTPNotifierWithDialer creates an SMTPNotifier sending through dialer.
func NewSMTPNotifierWithDialer(dialer Dialer, from string) *SMTPNotifier {
	return &SMTPNotifier{dialer: dialer, from: from}
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, email, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if email == n.from {
		return fmt.Errorf("refusing to send reset mail to the sender address %s", email)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", resetSubject)
	m.SetBody("text/plain", resetBody(link))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
