package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/secureid/identity-api/internal/api/metrics"
	"github.com/secureid/identity-api/internal/core/ports"
	"github.com/secureid/identity-api/pkg/clientip"
)

// RateLimitRule is one fixed-window budget for a protected route class.
type RateLimitRule struct {
	// Class names the route class in counter keys and metrics.
	Class string
	// Window is the fixed window length, opened by the first request.
	Window time.Duration
	// Max is the number of requests allowed within one window.
	Max int64
	// Message is the fixed human-readable rejection body.
	Message string
}

// RateLimit enforces a fixed-window budget per origin address. The counter
// store does the single atomic read-modify-write, so two concurrent requests
// cannot both observe "under budget". A failing store fails open with a warn
// log: the limiter protects against guessing, not against its own outages.
func RateLimit(store ports.CounterStore, rule RateLimitRule, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := clientip.FromRequest(c.Request())

			count, err := store.Incr(c.Request().Context(), rule.Class+":"+origin, rule.Window)
			if err != nil {
				log.Warn().Err(err).
					Str("route_class", rule.Class).
					Str("origin", origin).
					Msg("rate limit counter unavailable, allowing request")
				return next(c)
			}

			if count > rule.Max {
				metrics.RateLimitedTotal.WithLabelValues(rule.Class).Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, rule.Message)
			}
			return next(c)
		}
	}
}
