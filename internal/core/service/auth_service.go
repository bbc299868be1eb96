package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
	"github.com/secureid/identity-api/internal/core/token"
)

// AuthService implements registration, login, email verification, and the
// password reset flow. Audit writes and notification sends are best-effort:
// neither can fail the user-facing action.
type AuthService struct {
	repo      ports.UserRepository
	authority *token.Authority
	notifier  ports.Notifier
	audit     ports.AuditRecorder
	resetTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	authority *token.Authority,
	notifier ports.Notifier,
	audit ports.AuditRecorder,
	resetTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &AuthService{
		repo:      repo,
		authority: authority,
		notifier:  notifier,
		audit:     audit,
		resetTTL:  resetTTL,
		log:       log,
	}
}

// Register creates an unverified account with the default role and sends the
// verification secret. Uniqueness is enforced by the store; a duplicate email
// or username surfaces as domain.ErrUserExists even under concurrent calls.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
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
		Role:               domain.RoleUser,
		IsVerified:         false,
		VerificationSecret: secret,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		s.audit.Record(username, domain.ErrorAction(domain.ActionRegister), err.Error(), in.Origin)
		return nil, err
	}

	if err := s.notifier.SendVerification(ctx, created.Email, secret); err != nil {
		// The secret is persisted; the user can request a fresh send.
		s.log.Warn().Err(err).Str("email", created.Email).Msg("verification notification failed")
	}

	s.audit.Record(created.Username, domain.ActionRegister, "Email="+created.Email, in.Origin)
	return created, nil
}

// Login authenticates by email and password and returns a signed session
// token. Unverified accounts cannot authenticate. Failed password checks are
// audited with actor "unknown" so credential-stuffing leaves a trail. Only an
// unresolved email collapses into invalid credentials; any other store failure
// (e.g. a timeout surfacing as ErrUnavailable) is audited and propagated so
// the client sees a dependency problem, not a credential rejection.
func (s *AuthService) Login(ctx context.Context, email, password, origin string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		s.audit.Record("unknown", domain.ErrorAction(domain.ActionLogin), err.Error(), origin)
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.audit.Record("unknown", domain.ActionFailedLogin, "Email="+email, origin)
		return "", nil, domain.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return "", nil, domain.ErrNotVerified
	}

	tok, err := s.authority.Issue(domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		s.audit.Record("unknown", domain.ErrorAction(domain.ActionLogin), err.Error(), origin)
		return "", nil, err
	}

	s.audit.Record(user.Username, domain.ActionSuccessfulLogin, "Email="+email, origin)
	return tok, user, nil
}

// VerifyEmail resolves a verification secret, marks the account verified, and
// clears the secret in the same write so it cannot be replayed.
func (s *AuthService) VerifyEmail(ctx context.Context, secret, origin string) error {
	if secret == "" {
		return domain.ErrInvalidArgument
	}

	user, err := s.repo.FindByVerificationSecret(ctx, secret)
	if err != nil {
		return err
	}
	if err := s.repo.MarkVerified(ctx, user.ID); err != nil {
		s.audit.Record(user.Username, domain.ErrorAction(domain.ActionVerifyEmail), err.Error(), origin)
		return err
	}

	s.audit.Record(user.Username, domain.ActionVerifyEmail, "Email="+user.Email, origin)
	return nil
}

// RequestPasswordReset issues a fresh reset secret with an absolute expiry and
// sends it. Re-requesting overwrites any outstanding secret.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, origin string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.ErrInvalidArgument
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	secret, err := token.NewSecret()
	if err != nil {
		return err
	}

	expiry := time.Now().UTC().Add(s.resetTTL)
	if err := s.repo.SetResetSecret(ctx, user.ID, secret, expiry); err != nil {
		s.audit.Record(user.Username, domain.ErrorAction(domain.ActionPasswordResetReq), err.Error(), origin)
		return err
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, secret); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("reset notification failed")
	}

	s.audit.Record(user.Username, domain.ActionPasswordResetReq, "Email="+user.Email, origin)
	return nil
}

// ResetPassword consumes a reset secret. The store lookup enforces the expiry
// predicate; the new hash and the secret clear land in one atomic patch, so
// the secret is single-use even before its expiry.
func (s *AuthService) ResetPassword(ctx context.Context, secret, newPassword, origin string) error {
	if secret == "" || newPassword == "" {
		return domain.ErrInvalidArgument
	}

	user, err := s.repo.FindByResetSecret(ctx, secret, time.Now().UTC())
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	hashStr := string(hash)
	_, err = s.repo.Update(ctx, user.ID, ports.UserPatch{
		PasswordHash:     &hashStr,
		ClearResetSecret: true,
	})
	if err != nil {
		s.audit.Record(user.Username, domain.ErrorAction(domain.ActionPasswordReset), err.Error(), origin)
		return err
	}

	s.audit.Record(user.Username, domain.ActionPasswordReset, "Email="+user.Email, origin)
	return nil
}
