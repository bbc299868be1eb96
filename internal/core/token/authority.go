// Package token implements the session token authority: HS256-signed session
// tokens carrying the principal, and high-entropy one-time secrets for the
// verification and reset flows. Verification is stateless; validity is purely
// signature plus expiry, there is no server-side session table.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/secureid/identity-api/internal/core/domain"
)

const secretBytes = 20

// Claims is the session token payload.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Authority issues and verifies session tokens with a process-wide signing
// secret loaded once at startup. It holds no mutable state and is safe for
// concurrent use.
type Authority struct {
	secret     []byte
	sessionTTL time.Duration
}

// NewAuthority returns an Authority signing with secret. A non-positive ttl
// falls back to one hour.
func NewAuthority(secret string, sessionTTL time.Duration) *Authority {
	if sessionTTL == 0 {
		sessionTTL = time.Hour
	}
	return &Authority{secret: []byte(secret), sessionTTL: sessionTTL}
}

// SessionTTL reports the configured session lifetime.
func (a *Authority) SessionTTL() time.Duration {
	return a.sessionTTL
}

// Issue signs a session token for the principal, valid for the configured TTL.
func (a *Authority) Issue(p domain.Principal) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   p.UserID,
		Username: p.Username,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.sessionTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenStr and reconstructs the
// Principal. The signature outcome is resolved before any payload field is
// trusted: a tampered token always fails with ErrInvalidToken regardless of
// what its payload claims.
func (a *Authority) Verify(tokenStr string) (*domain.Principal, error) {
	if tokenStr == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrInvalidToken
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		default:
			return nil, domain.ErrInvalidToken
		}
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	if claims.UserID == "" || claims.Username == "" || !domain.ValidRole(claims.Role) {
		return nil, domain.ErrInvalidToken
	}

	return &domain.Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// NewSecret returns a cryptographically random one-time secret, hex-encoded.
func NewSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
