package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Publisher puts a message body on the mail queue. *rabbitmq.Client implements it.
type Publisher interface {
	Publish(body []byte) error
}

// QueueNotifier publishes reset mails for a Relay to deliver, so the request
// returns without waiting on SMTP.
type QueueNotifier struct {
	publisher Publisher
	now       func() time.Time
}

// NewQueueNotifier creates a QueueNotifier publishing through publisher.
func NewQueueNotifier(publisher Publisher) *QueueNotifier {
	return &QueueNotifier{publisher: publisher, now: time.Now}
}

func (n *QueueNotifier) SendPasswordReset(ctx context.Context, email, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(ResetMail{To: email, Link: link, RequestedAt: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal reset mail: %w", err)
	}
	if err := n.publisher.Publish(body); err != nil {
		return fmt.Errorf("failed to queue reset mail: %w", err)
	}
	return nil
}

// Relay consumes queued reset mails and delivers them with another Notifier.
type Relay struct {
	next   Notifier
	maxAge time.Duration
	now    func() time.Time
}

// NewRelay creates a Relay delivering through next. Mails older than maxAge
// carry an expired link and are dropped; zero disables the check.
func NewRelay(next Notifier, maxAge time.Duration) *Relay {
	return &Relay{next: next, maxAge: maxAge, now: time.Now}
}

// Handle decodes and delivers one queued message. It matches the handler
// signature of rabbitmq.Client.Consume.
func (r *Relay) Handle(body []byte) error {
	var mail ResetMail
	if err := json.Unmarshal(body, &mail); err != nil {
		return fmt.Errorf("failed to decode reset mail: %w", err)
	}
	if mail.To == "" || mail.Link == "" {
		return fmt.Errorf("reset mail is missing a recipient or link")
	}
	if r.maxAge > 0 && !mail.RequestedAt.IsZero() && r.now().Sub(mail.RequestedAt) >= r.maxAge {
		zap.L().Warn("Dropping expired reset mail", zap.String("to", mail.To), zap.Time("requestedAt", mail.RequestedAt))
		return nil
	}
	return r.next.SendPasswordReset(context.Background(), mail.To, mail.Link)
}
