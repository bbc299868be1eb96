package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
)

// stubUserRepo is an in-memory ports.UserRepository with the same uniqueness
// and lookup semantics as the mongo adapter.
type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.ResetSecretExpiry != nil {
		expiry := *u.ResetSecretExpiry
		clone.ResetSecretExpiry = &expiry
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}

	r.nextID++
	created := cloneUser(user)
	created.ID = "u" + strconv.Itoa(r.nextID)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) FindByVerificationSecret(_ context.Context, secret string) (*domain.User, error) {
	if secret == "" {
		return nil, domain.ErrInvalidArgument
	}
	return r.findBy(func(u *domain.User) bool { return u.VerificationSecret == secret })
}

func (r *stubUserRepo) FindByResetSecret(_ context.Context, secret string, notExpiredAsOf time.Time) (*domain.User, error) {
	if secret == "" {
		return nil, domain.ErrInvalidArgument
	}
	return r.findBy(func(u *domain.User) bool {
		return u.ResetSecret == secret &&
			u.ResetSecretExpiry != nil &&
			u.ResetSecretExpiry.After(notExpiredAsOf)
	})
}

func (r *stubUserRepo) findBy(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsVerified != nil {
		u.IsVerified = *patch.IsVerified
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.AvatarRef != nil {
		u.AvatarRef = *patch.AvatarRef
	}
	if patch.ClearVerificationSecret {
		u.VerificationSecret = ""
	}
	if patch.ClearResetSecret {
		u.ResetSecret = ""
		u.ResetSecretExpiry = nil
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, cloneUser(u))
	}
	return users, nil
}

func (r *stubUserRepo) MarkVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsVerified = true
	u.VerificationSecret = ""
	return nil
}

func (r *stubUserRepo) SetResetSecret(_ context.Context, id, secret string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetSecret = secret
	u.ResetSecretExpiry = &expiry
	return nil
}

// stubRecorder captures audit entries synchronously.
type stubRecorder struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *stubRecorder) Record(actor, action, detail, originAddress string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, domain.AuditEntry{
		Actor:         actor,
		Action:        action,
		Detail:        detail,
		OriginAddress: originAddress,
		Timestamp:     time.Now().UTC(),
	})
}

func (r *stubRecorder) byAction(action string) []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// stubNotifier captures outbound notification intents.
type stubNotifier struct {
	mu            sync.Mutex
	verifications map[string]string
	resets        map[string]string
	fail          error
}

func newStubNotifier() *stubNotifier {
	return &stubNotifier{
		verifications: make(map[string]string),
		resets:        make(map[string]string),
	}
}

func (n *stubNotifier) SendVerification(_ context.Context, email, secret string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.verifications[email] = secret
	return nil
}

func (n *stubNotifier) SendPasswordReset(_ context.Context, email, secret string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.resets[email] = secret
	return nil
}
