package ports

import "context"

// Notifier is the outbound notification collaborator. Delivery is
// fire-and-forget: a failure must not roll back the state change that
// triggered it, since the persisted secret lets the user request a fresh send.
type Notifier interface {
	SendVerification(ctx context.Context, email, secret string) error
	SendPasswordReset(ctx context.Context, email, secret string) error
}
