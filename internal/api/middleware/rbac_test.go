package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/core/domain"
)

func runRequireRole(t *testing.T, principal *domain.Principal, roles ...string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		c.Set(PrincipalKey, *principal)
	}
	return RequireRole(roles...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
}

func TestRequireRole_Allowed(t *testing.T) {
	p := domain.Principal{UserID: "u1", Username: "alice", Role: domain.RoleUser}
	if err := runRequireRole(t, &p, domain.RoleUser, domain.RoleAdmin); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestRequireRole_ExactMatchOnly(t *testing.T) {
	// No hierarchy in either direction.
	admin := domain.Principal{UserID: "u1", Username: "root", Role: domain.RoleAdmin}
	err := runRequireRole(t, &admin, domain.RoleUser)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("admin must not satisfy a user-only check, got %v", err)
	}

	user := domain.Principal{UserID: "u2", Username: "alice", Role: domain.RoleUser}
	err = runRequireRole(t, &user, domain.RoleAdmin)
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("user must not satisfy an admin-only check, got %v", err)
	}
}

func TestRequireRole_MissingPrincipal(t *testing.T) {
	err := runRequireRole(t, nil, domain.RoleAdmin)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %v", err)
	}
}
