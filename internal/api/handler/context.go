package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/api/middleware"
	"github.com/secureid/identity-api/internal/core/domain"
)

// ctxPrincipal extracts the Principal injected by the Auth middleware and
// fast-fails before any service call: a missing or malformed principal means
// the middleware did not run, which no handler should tolerate.
func ctxPrincipal(c echo.Context) (domain.Principal, error) {
	principal, ok := c.Get(middleware.PrincipalKey).(domain.Principal)
	if !ok || principal.UserID == "" {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return principal, nil
}
