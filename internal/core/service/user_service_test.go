package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
)

func newUserFixture(t *testing.T) (*UserService, *stubUserRepo, *stubRecorder, *domain.User) {
	t.Helper()
	repo := newStubUserRepo()
	recorder := &stubRecorder{}
	svc := NewUserService(repo, recorder, zerolog.Nop())

	now := time.Now().UTC()
	user, err := repo.Create(context.Background(), &domain.User{
		Username:     "nina",
		Email:        "nina@example.com",
		PasswordHash: "irrelevant",
		Role:         domain.RoleUser,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return svc, repo, recorder, user
}

func TestUserService_Profile(t *testing.T) {
	svc, _, _, user := newUserFixture(t)

	got, err := svc.Profile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if got.Username != "nina" {
		t.Fatalf("unexpected profile: %+v", got)
	}

	if _, err := svc.Profile(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, repo, recorder, user := newUserFixture(t)
	principal := domain.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}

	first := "Nina"
	password := "freshpass1"
	updated, err := svc.UpdateProfile(context.Background(), principal, ports.ProfileUpdateInput{
		FirstName: &first,
		Password:  &password,
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.FirstName != "Nina" {
		t.Fatalf("first name not applied: %+v", updated)
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("freshpass1")); err != nil {
		t.Fatalf("password not hashed and stored: %v", err)
	}
	if len(recorder.byAction(domain.ActionUpdateProfile)) != 1 {
		t.Fatalf("expected one update_profile audit entry")
	}
}

func TestUserService_UpdateProfile_EmptyPatch(t *testing.T) {
	svc, _, _, user := newUserFixture(t)
	principal := domain.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}

	if _, err := svc.UpdateProfile(context.Background(), principal, ports.ProfileUpdateInput{}, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestUserService_UpdateProfile_BlankEmail(t *testing.T) {
	svc, _, _, user := newUserFixture(t)
	principal := domain.Principal{UserID: user.ID, Username: user.Username, Role: user.Role}

	email := "   "
	if _, err := svc.UpdateProfile(context.Background(), principal, ports.ProfileUpdateInput{Email: &email}, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestUserService_UpdateAvatar(t *testing.T) {
	svc, repo, _, user := newUserFixture(t)

	updated, err := svc.UpdateAvatar(context.Background(), user.ID, "avatars/nina.png")
	if err != nil {
		t.Fatalf("avatar update failed: %v", err)
	}
	if updated.AvatarRef != "avatars/nina.png" {
		t.Fatalf("avatar not applied: %+v", updated)
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.AvatarRef != "avatars/nina.png" {
		t.Fatalf("avatar not persisted: %+v", stored)
	}
}
