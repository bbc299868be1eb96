package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/secureid/identity-api/internal/core/ports"
	"github.com/secureid/identity-api/internal/core/token"
)

// Full account lifecycle: register, verify, login, then read the profile with
// the principal reconstructed from the issued token.
func TestAccountLifecycle(t *testing.T) {
	repo := newStubUserRepo()
	notifier := newStubNotifier()
	recorder := &stubRecorder{}
	authority := token.NewAuthority("flow-secret", time.Hour)

	authSvc := NewAuthService(repo, authority, notifier, recorder, time.Hour, zerolog.Nop())
	userSvc := NewUserService(repo, recorder, zerolog.Nop())

	ctx := context.Background()

	if _, err := authSvc.Register(ctx, ports.RegisterInput{
		Username: "olga",
		Email:    "olga@example.com",
		Password: "pass12345",
		Origin:   "127.0.0.1",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Before verification, login is refused.
	if _, _, err := authSvc.Login(ctx, "olga@example.com", "pass12345", "127.0.0.1"); err == nil {
		t.Fatalf("login must fail before verification")
	}

	if err := authSvc.VerifyEmail(ctx, notifier.verifications["olga@example.com"], "127.0.0.1"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	tok, _, err := authSvc.Login(ctx, "olga@example.com", "pass12345", "127.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	principal, err := authority.Verify(tok)
	if err != nil {
		t.Fatalf("token verification failed: %v", err)
	}

	profile, err := userSvc.Profile(ctx, principal.UserID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile.Email != "olga@example.com" || !profile.IsVerified {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	// The serialised profile must not expose the hash or any one-time secret.
	raw, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	body := string(raw)
	for _, field := range []string{"password", "secret", profile.PasswordHash} {
		if field != "" && strings.Contains(strings.ToLower(body), strings.ToLower(field)) {
			t.Fatalf("serialised profile leaks %q: %s", field, body)
		}
	}
}
