package domain

import "errors"

// Failure taxonomy shared by all components. Infrastructure wraps these with
// %w so callers can match with errors.Is; the HTTP layer maps them to status
// codes in exactly one place.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConflict           = errors.New("resource already exists")
	ErrNotFound           = errors.New("resource not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrForbidden          = errors.New("access forbidden")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrUnavailable        = errors.New("dependency unavailable")
)
