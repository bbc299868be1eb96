package ports

import (
	"context"

	"github.com/secureid/identity-api/internal/core/domain"
)

// RegisterInput carries a self-service registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Origin   string
}

// AuthService implements the credential flows: registration, login, email
// verification, and the two-step password reset.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login returns a signed session token on success.
	Login(ctx context.Context, email, password, origin string) (string, *domain.User, error)
	VerifyEmail(ctx context.Context, secret, origin string) error
	RequestPasswordReset(ctx context.Context, email, origin string) error
	ResetPassword(ctx context.Context, secret, newPassword, origin string) error
}
