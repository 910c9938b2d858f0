package mailer

import (
	"context"
	"log"
)

// Mailer delivers transactional plaintext mail. Implementations must be safe
// for concurrent use; callers treat delivery as best-effort.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer logs messages instead of sending them. It is used when no
// SendGrid API key is configured so local development works without
// provider credentials.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("[MAIL] dry-run delivery to=%s subject=%q", to, subject)
	return nil
}
