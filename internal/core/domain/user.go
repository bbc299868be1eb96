package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the two supported roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User models a registered account. PasswordHash and the one-time secrets are
// never serialised to API responses.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	Role               string     `json:"role"`
	IsVerified         bool       `json:"is_verified"`
	VerificationSecret string     `json:"-"`
	ResetSecret        string     `json:"-"`
	ResetSecretExpiry  *time.Time `json:"-"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	AvatarRef          string     `json:"profile_picture"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Principal is the verified identity derived from a session token for the
// duration of one request. It is reconstructed fresh on every request and
// never persisted.
type Principal struct {
	UserID   string
	Username string
	Role     string
}
