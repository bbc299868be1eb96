package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
	"github.com/secureid/identity-api/pkg/clientip"
)

// AuditAccess records an audit entry tagged with action every time the route
// is reached. The actor is the verified principal when present, "guest"
// otherwise. Recording is best-effort and never affects the response.
func AuditAccess(recorder ports.AuditRecorder, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := "guest"
			if principal, ok := c.Get(PrincipalKey).(domain.Principal); ok {
				actor = principal.Username
			}

			recorder.Record(actor, action, "Accessed "+c.Request().URL.Path, clientip.FromRequest(c.Request()))
			return next(c)
		}
	}
}
