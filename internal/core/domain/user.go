package domain

import (
	"strings"
	"time"
)

// Role is a capability level granted to an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalises role strings coming from tokens or storage.
// Unknown values are returned as-is and never grant admin rights.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin, "ROLE_ADMIN":
		return RoleAdmin
	case RoleUser, "ROLE_USER":
		return RoleUser
	default:
		return Role(s)
	}
}

// User models an account that owns milk records.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasRole reports whether the account was granted r.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// Actor is the authenticated identity performing an operation.
// It is resolved by the transport layer and passed explicitly into services.
type Actor struct {
	ID       string
	Username string
	Roles    []Role
}

// ActorFromUser builds an Actor for a stored account.
func ActorFromUser(u *User) Actor {
	roles := make([]Role, len(u.Roles))
	copy(roles, u.Roles)
	return Actor{ID: u.ID, Username: u.Username, Roles: roles}
}
