package ports

import (
	"context"
	"time"

	"github.com/secureid/identity-api/internal/core/domain"
)

// UserPatch is an explicit partial update. Nil fields are left untouched;
// the Clear* flags remove the corresponding one-time secret (for the reset
// secret, together with its expiry). The repository applies the whole patch
// in a single atomic write.
//
// Password values are hashed before they reach a patch: only PasswordHash
// exists here, so a raw password can never be persisted by construction.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *string
	IsVerified   *bool
	FirstName    *string
	LastName     *string
	AvatarRef    *string

	ClearVerificationSecret bool
	ClearResetSecret        bool
}

// IsZero reports whether the patch would change nothing.
func (p UserPatch) IsZero() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil &&
		p.Role == nil && p.IsVerified == nil && p.FirstName == nil &&
		p.LastName == nil && p.AvatarRef == nil &&
		!p.ClearVerificationSecret && !p.ClearResetSecret
}

// UserRepository is the credential store contract. It is the only writer of
// identity state and never emits audit entries; callers are responsible for
// auditing their own mutations.
//
// Implementations must reject malformed ids with domain.ErrInvalidArgument
// before touching the store, enforce email/username uniqueness with a storage
// level constraint (domain.ErrUserExists on violation), and return
// domain.ErrUserNotFound when an id or secret does not resolve.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByVerificationSecret(ctx context.Context, secret string) (*domain.User, error)
	// FindByResetSecret resolves a reset secret only while its stored expiry
	// is after notExpiredAsOf. The expiry predicate lives in the store query,
	// not in callers.
	FindByResetSecret(ctx context.Context, secret string, notExpiredAsOf time.Time) (*domain.User, error)

	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.User, error)

	// MarkVerified sets is_verified and clears the verification secret in the
	// same write.
	MarkVerified(ctx context.Context, id string) error
	// SetResetSecret stores the secret and its expiry together.
	SetResetSecret(ctx context.Context, id, secret string, expiry time.Time) error
}
