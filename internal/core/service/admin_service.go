package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
	"github.com/secureid/identity-api/internal/core/token"
)

// AdminService implements the admin-only account management surface. Role and
// id inputs are validated here before any privilege-affecting write reaches
// the store.
type AdminService struct {
	repo     ports.UserRepository
	notifier ports.Notifier
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

func NewAdminService(repo ports.UserRepository, notifier ports.Notifier, audit ports.AuditRecorder, log zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, notifier: notifier, audit: audit, log: log}
}

// CreateUser creates an account with an explicit role. The new account still
// starts unverified and receives a verification secret like any other.
func (s *AdminService) CreateUser(ctx context.Context, actor domain.Principal, in ports.AdminCreateInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidArgument
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidArgument
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	secret, err := token.NewSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:           username,
		Email:              email,
		PasswordHash:       string(hash),
		Role:               role,
		VerificationSecret: secret,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		s.audit.Record(actor.Username, domain.ErrorAction(domain.ActionCreateUser), err.Error(), in.Origin)
		return nil, err
	}

	if err := s.notifier.SendVerification(ctx, created.Email, secret); err != nil {
		s.log.Warn().Err(err).Str("email", created.Email).Msg("verification notification failed")
	}

	s.audit.Record(actor.Username, domain.ActionCreateUser,
		"Created user "+created.Username+" with role "+created.Role, in.Origin)
	return created, nil
}

// UpdateUser applies an admin partial update to the user identified by id.
// The id is taken from the route, validated by the store adapter before any
// query; role values are checked against the fixed role set here.
func (s *AdminService) UpdateUser(ctx context.Context, actor domain.Principal, id string, in ports.AdminUpdateInput, origin string) (*domain.User, error) {
	patch := ports.UserPatch{
		Role:       in.Role,
		IsVerified: in.IsVerified,
	}
	if in.Role != nil && !domain.ValidRole(*in.Role) {
		return nil, domain.ErrInvalidArgument
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

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		s.audit.Record(actor.Username, domain.ErrorAction(domain.ActionUpdateUser), err.Error(), origin)
		return nil, err
	}

	s.audit.Record(actor.Username, domain.ActionUpdateUser,
		"Updated user "+updated.Username+" with role "+updated.Role, origin)
	return updated, nil
}

// DeleteUser hard-deletes an account. The audit entry keeps the deleted
// account's name as free text, not a live reference.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Principal, id, origin string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.audit.Record(actor.Username, domain.ErrorAction(domain.ActionDeleteUser), err.Error(), origin)
		return err
	}

	s.audit.Record(actor.Username, domain.ActionDeleteUser, "Deleted user "+user.Username, origin)
	return nil
}

// ListUsers returns all accounts.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}
