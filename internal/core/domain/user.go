package domain

import "time"

// Roles known to the backend. Role is a free-form tag; these are the values
// the console gives special meaning to.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleTester  = "tester"
)

// Permission names an operation gated by role.
type Permission string

const (
	PermCreateTestSuite Permission = "test_suite:create"
)

var grants = map[Permission][]string{
	PermCreateTestSuite: {RoleAdmin, RoleManager},
}

// Can reports whether role holds perm. Roles match exactly.
func Can(role string, perm Permission) bool {
	for _, r := range grants[perm] {
		if r == role {
			return true
		}
	}
	return false
}

// AuthUser is the identity returned by the backend for a logged-in session.
type AuthUser struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Equal reports whether two users carry the same payload.
func (u *AuthUser) Equal(other *AuthUser) bool {
	if u == nil || other == nil {
		return u == other
	}
	if u.ID != other.ID || u.Username != other.Username || u.Role != other.Role {
		return false
	}
	if !u.CreatedAt.Equal(other.CreatedAt) || !u.UpdatedAt.Equal(other.UpdatedAt) {
		return false
	}
	if u.LastLoginAt == nil || other.LastLoginAt == nil {
		return u.LastLoginAt == other.LastLoginAt
	}
	return u.LastLoginAt.Equal(*other.LastLoginAt)
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (u *AuthUser) Clone() *AuthUser {
	if u == nil {
		return nil
	}
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}
