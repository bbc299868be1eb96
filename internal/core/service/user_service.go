package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
)

// UserService implements the authenticated self-service profile surface.
type UserService struct {
	repo  ports.UserRepository
	audit ports.AuditRecorder
	log   zerolog.Logger
}

func NewUserService(repo ports.UserRepository, audit ports.AuditRecorder, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, audit: audit, log: log}
}

// Profile returns the caller's own record. Sensitive fields are excluded from
// serialisation at the domain type, not filtered here.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile applies a self-service partial update for the authenticated
// principal. The target id comes from the verified token, never from the
// request body. A raw password, when present, is hashed before it reaches
// the store.
func (s *UserService) UpdateProfile(ctx context.Context, principal domain.Principal, in ports.ProfileUpdateInput, origin string) (*domain.User, error) {
	patch := ports.UserPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, domain.ErrInvalidArgument
		}
		patch.Username = &username
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" {
			return nil, domain.ErrInvalidArgument
		}
		patch.Email = &email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.ErrInvalidArgument
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashStr := string(hash)
		patch.PasswordHash = &hashStr
	}
	if patch.IsZero() {
		return nil, domain.ErrInvalidArgument
	}

	updated, err := s.repo.Update(ctx, principal.UserID, patch)
	if err != nil {
		s.audit.Record(principal.Username, domain.ErrorAction(domain.ActionUpdateProfile), err.Error(), origin)
		return nil, err
	}

	s.audit.Record(principal.Username, domain.ActionUpdateProfile,
		"Updated user "+updated.Username+" with role "+updated.Role, origin)
	return updated, nil
}

// UpdateAvatar replaces the caller's avatar reference.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, avatarRef string) (*domain.User, error) {
	return s.repo.Update(ctx, userID, ports.UserPatch{AvatarRef: &avatarRef})
}
