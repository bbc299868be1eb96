// Package notify adapts the outbound notification collaborator. Actual mail
// delivery lives outside this service; LogNotifier records the delivery
// intent so an operator (or a test) can observe what would have been sent.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier implements ports.Notifier by logging delivery intents.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// SendVerification records the intent to deliver a verification link. The
// secret itself is not logged.
func (n *LogNotifier) SendVerification(_ context.Context, email, secret string) error {
	n.log.Info().
		Str("email", email).
		Int("secret_len", len(secret)).
		Msg("verification notification dispatched")
	return nil
}

// SendPasswordReset records the intent to deliver a password reset link.
func (n *LogNotifier) SendPasswordReset(_ context.Context, email, secret string) error {
	n.log.Info().
		Str("email", email).
		Int("secret_len", len(secret)).
		Msg("password reset notification dispatched")
	return nil
}
