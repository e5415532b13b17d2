// Package notifier delivers password reset links. The SMTP notifier sends
// mail directly; the queue notifier publishes a ResetMail to RabbitMQ and a
// Relay running beside the server hands it to SMTP.
package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Notifier delivers a password reset link to email.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// ResetMail is the queued form of a password reset notification.
type ResetMail struct {
	To          string    `json:"to"`
	Link        string    `json:"link"`
	RequestedAt time.Time `json:"requested_at"`
}

const resetSubject = "Password Reset"

func resetBody(link string) string {
	return fmt.Sprintf("Click the link to reset your password:\n\n%s\n\nThis link expires in 30 minutes.", link)
}

// LogNotifier records a reset request in the log instead of sending mail.
// The link carries a live token, so only the recipient is written. It is
// meant for local development.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier writing to logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, email, link string) error {
	n.logger.Info("Password reset requested", zap.String("to", email))
	return nil
}
