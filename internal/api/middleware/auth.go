package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/secureid/identity-api/internal/api/metrics"
	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/token"
)

// PrincipalKey is the echo context key under which Auth stores the verified
// principal.
const PrincipalKey = "principal"

// SessionCookie is the cookie the session token travels in.
const SessionCookie = "token"

// Auth verifies the session token and injects the reconstructed Principal
// into the request context. The token is read from the session cookie first,
// then from a bearer Authorization header. Verification is stateless: a valid
// signature plus an unexpired exp is the entire check.
func Auth(authority *token.Authority) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "no token, authorization denied")
			}

			principal, err := authority.Verify(raw)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrTokenExpired):
					metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				default:
					metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "token is not valid")
				}
			}

			metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
			c.Set(PrincipalKey, *principal)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && authHeader[:len(prefix)] == prefix {
		return authHeader[len(prefix):]
	}
	return ""
}
