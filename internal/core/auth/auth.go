// Package auth defines the identity, credential and session phase types
// shared by the session store, the route guard and the REST adapter.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/hay-kot/taskdeck/internal/core/jsonx"
)

// ErrNoCredential is returned by a CredentialStore when nothing is saved.
var ErrNoCredential = errors.New("no stored credential")

// Role is the authorization role of an identity.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole accepts "admin", "ADMIN" and Spring style "ROLE_ADMIN". Anything
// unrecognised is treated as an ordinary user.
func ParseRole(s string) Role {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "ROLE_")
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// Satisfies reports whether r grants at least the required role.
func (r Role) Satisfies(required Role) bool {
	switch required {
	case "", RoleUser:
		return true
	case RoleAdmin:
		return r == RoleAdmin
	default:
		return false
	}
}

// UnmarshalText normalizes role strings received from the backend.
func (r *Role) UnmarshalText(b []byte) error {
	*r = ParseRole(string(b))
	return nil
}

// Identity is the authenticated user as reported by the backend.
type Identity struct {
	ID       jsonx.ID `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
}

// IsAdmin reports whether the identity carries the administrator role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Credential is the single piece of client side state persisted between runs:
// a bearer token plus the identity snapshot it was issued for.
type Credential struct {
	Token    string    `json:"token"`
	Identity Identity  `json:"identity"`
	SavedAt  time.Time `json:"saved_at"`
}

// Expired reports whether the token's exp claim is before now. Tokens
// without a readable exp claim are never considered expired locally.
func (c Credential) Expired(now time.Time) bool {
	exp, ok := TokenExpiry(c.Token)
	if !ok {
		return false
	}
	return !now.Before(exp)
}

// CredentialStore persists at most one credential.
type CredentialStore interface {
	// Load returns ErrNoCredential when nothing has been saved.
	Load() (Credential, error)
	Save(c Credential) error
	Clear() error
}
