package domain

import "strings"

// Role is the coarse-grained role an actor holds.
type Role string

const (
	RoleUser     Role = "USER"
	RoleApprover Role = "APPROVER"
	RoleAdmin    Role = "ADMIN"
)

// Roles lists every known role.
var Roles = []Role{RoleUser, RoleApprover, RoleAdmin}

// ParseRole normalizes a role string. Unknown roles return false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsZero reports whether the actor carries no identity.
func (a Actor) IsZero() bool {
	return strings.TrimSpace(a.ID) == ""
}
