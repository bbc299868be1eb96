package ports

import (
	"context"

	"github.com/secureid/identity-api/internal/core/domain"
)

// ProfileUpdateInput carries the self-service profile mutation. Nil fields
// are left unchanged. Password is raw here; the service hashes it before it
// reaches a repository patch.
type ProfileUpdateInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

// UserService covers the authenticated self-service surface.
type UserService interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, principal domain.Principal, in ProfileUpdateInput, origin string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarRef string) (*domain.User, error)
}

// AdminCreateInput carries the admin-only user creation request; unlike
// self-service registration it may set the role explicitly.
type AdminCreateInput struct {
	Username string
	Email    string
	Password string
	Role     string
	Origin   string
}

// AdminUpdateInput is the admin-only partial user update.
type AdminUpdateInput struct {
	Username   *string
	Email      *string
	Password   *string
	Role       *string
	IsVerified *bool
}

// AdminService covers the admin-only account management surface. Every
// mutation is audited with the acting admin as the actor.
type AdminService interface {
	CreateUser(ctx context.Context, actor domain.Principal, in AdminCreateInput) (*domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Principal, id string, in AdminUpdateInput, origin string) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Principal, id, origin string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
