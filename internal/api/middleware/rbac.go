package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/core/domain"
)

// RequireRole gates a route on exact role membership. The policy is not
// hierarchical: an admin principal does not satisfy a user-only check, so
// every route declares its own accepted role set explicitly.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := c.Get(PrincipalKey).(domain.Principal)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if _, ok := allowed[principal.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
			return next(c)
		}
	}
}
