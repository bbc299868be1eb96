package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/token"
)

var authPrincipal = domain.Principal{UserID: "u1", Username: "alice", Role: domain.RoleUser}

func authTestHandler(t *testing.T) echo.HandlerFunc {
	t.Helper()
	return func(c echo.Context) error {
		principal, ok := c.Get(PrincipalKey).(domain.Principal)
		if !ok {
			t.Fatalf("principal not injected")
		}
		if principal != authPrincipal {
			t.Fatalf("unexpected principal: %+v", principal)
		}
		return c.NoContent(http.StatusOK)
	}
}

func runAuth(t *testing.T, authority *token.Authority, decorate func(*http.Request)) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := Auth(authority)(authTestHandler(t))(c)
	return rec, err
}

func TestAuth_CookieToken(t *testing.T) {
	authority := token.NewAuthority("secret", time.Hour)
	tok, err := authority.Issue(authPrincipal)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	rec, err := runAuth(t, authority, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	})
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestAuth_BearerFallback(t *testing.T) {
	authority := token.NewAuthority("secret", time.Hour)
	tok, err := authority.Issue(authPrincipal)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = runAuth(t, authority, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+tok)
	})
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
}

func TestAuth_CookieWinsOverHeader(t *testing.T) {
	authority := token.NewAuthority("secret", time.Hour)
	tok, err := authority.Issue(authPrincipal)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = runAuth(t, authority, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
		req.Header.Set("Authorization", "Bearer garbage")
	})
	if err != nil {
		t.Fatalf("cookie token should take precedence: %v", err)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	authority := token.NewAuthority("secret", time.Hour)

	_, err := runAuth(t, authority, nil)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if httpErr.Message != "no token, authorization denied" {
		t.Fatalf("unexpected message: %v", httpErr.Message)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	authority := token.NewAuthority("secret", time.Hour)
	other := token.NewAuthority("other-secret", time.Hour)
	tok, err := other.Issue(authPrincipal)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = runAuth(t, authority, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if httpErr.Message != "token is not valid" {
		t.Fatalf("unexpected message: %v", httpErr.Message)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	expiredIssuer := token.NewAuthority("secret", -time.Minute)
	authority := token.NewAuthority("secret", time.Hour)
	tok, err := expiredIssuer.Issue(authPrincipal)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = runAuth(t, authority, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	})
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if httpErr.Message != "token expired" {
		t.Fatalf("unexpected message: %v", httpErr.Message)
	}
}
