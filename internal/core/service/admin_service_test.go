package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
)

var adminActor = domain.Principal{UserID: "u0", Username: "root", Role: domain.RoleAdmin}

func newAdminFixture() (*AdminService, *stubUserRepo, *stubRecorder) {
	repo := newStubUserRepo()
	recorder := &stubRecorder{}
	svc := NewAdminService(repo, newStubNotifier(), recorder, zerolog.Nop())
	return svc, repo, recorder
}

func TestAdminService_CreateUser_ExplicitRole(t *testing.T) {
	svc, _, recorder := newAdminFixture()

	user, err := svc.CreateUser(context.Background(), adminActor, ports.AdminCreateInput{
		Username: "ops",
		Email:    "ops@example.com",
		Password: "pass12345",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
	if user.IsVerified || user.VerificationSecret == "" {
		t.Fatalf("admin-created accounts still start unverified with a secret, got %+v", user)
	}

	entries := recorder.byAction(domain.ActionCreateUser)
	if len(entries) != 1 || entries[0].Actor != "root" {
		t.Fatalf("expected one create_user entry by root, got %+v", entries)
	}
}

func TestAdminService_CreateUser_DefaultRole(t *testing.T) {
	svc, _, _ := newAdminFixture()

	user, err := svc.CreateUser(context.Background(), adminActor, ports.AdminCreateInput{
		Username: "plain",
		Email:    "plain@example.com",
		Password: "pass12345",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}
}

func TestAdminService_CreateUser_InvalidRole(t *testing.T) {
	svc, _, _ := newAdminFixture()

	_, err := svc.CreateUser(context.Background(), adminActor, ports.AdminCreateInput{
		Username: "x",
		Email:    "x@example.com",
		Password: "pass12345",
		Role:     "superuser",
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAdminService_CreateUser_Duplicate(t *testing.T) {
	svc, _, recorder := newAdminFixture()

	in := ports.AdminCreateInput{Username: "dup", Email: "dup@example.com", Password: "pass12345"}
	if _, err := svc.CreateUser(context.Background(), adminActor, in); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), adminActor, in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(recorder.byAction(domain.ErrorAction(domain.ActionCreateUser))) != 1 {
		t.Fatalf("expected one create_user_error entry")
	}
}

func TestAdminService_UpdateUser(t *testing.T) {
	svc, repo, recorder := newAdminFixture()

	user, err := svc.CreateUser(context.Background(), adminActor, ports.AdminCreateInput{
		Username: "mutable",
		Email:    "mutable@example.com",
		Password: "pass12345",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	role := domain.RoleAdmin
	verified := true
	updated, err := svc.UpdateUser(context.Background(), adminActor, user.ID, ports.AdminUpdateInput{
		Role:       &role,
		IsVerified: &verified,
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Role != domain.RoleAdmin || !updated.IsVerified {
		t.Fatalf("patch not applied: %+v", updated)
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.Role != domain.RoleAdmin {
		t.Fatalf("role not persisted: %+v", stored)
	}
	if len(recorder.byAction(domain.ActionUpdateUser)) != 1 {
		t.Fatalf("expected one update_user entry")
	}
}

func TestAdminService_UpdateUser_InvalidRole(t *testing.T) {
	svc, _, _ := newAdminFixture()

	role := "owner"
	_, err := svc.UpdateUser(context.Background(), adminActor, "u1", ports.AdminUpdateInput{Role: &role}, "")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAdminService_UpdateUser_EmptyPatch(t *testing.T) {
	svc, _, _ := newAdminFixture()

	_, err := svc.UpdateUser(context.Background(), adminActor, "u1", ports.AdminUpdateInput{}, "")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAdminService_UpdateUser_NotFound(t *testing.T) {
	svc, _, _ := newAdminFixture()

	verified := true
	_, err := svc.UpdateUser(context.Background(), adminActor, "missing", ports.AdminUpdateInput{IsVerified: &verified}, "")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminService_DeleteUser(t *testing.T) {
	svc, repo, recorder := newAdminFixture()

	user, err := svc.CreateUser(context.Background(), adminActor, ports.AdminCreateInput{
		Username: "doomed",
		Email:    "doomed@example.com",
		Password: "pass12345",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteUser(context.Background(), adminActor, user.ID, "127.0.0.1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), user.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("user still present after delete")
	}

	entries := recorder.byAction(domain.ActionDeleteUser)
	if len(entries) != 1 || entries[0].Detail != "Deleted user doomed" {
		t.Fatalf("unexpected delete audit: %+v", entries)
	}
}

func TestAdminService_DeleteUser_NotFound(t *testing.T) {
	svc, _, _ := newAdminFixture()

	if err := svc.DeleteUser(context.Background(), adminActor, "missing", ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminService_ListUsers(t *testing.T) {
	svc, _, _ := newAdminFixture()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := svc.CreateUser(context.Background(), adminActor, ports.AdminCreateInput{
			Username: name,
			Email:    name + "@example.com",
			Password: "pass12345",
		}); err != nil {
			t.Fatalf("seed %s failed: %v", name, err)
		}
	}

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
}
