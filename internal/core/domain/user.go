package domain

import "time"

// Role is the ordered access tier assigned to every user account.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"

	// RoleNone marks operations that require authentication only.
	RoleNone Role = ""
)

// roleHierarchy defines the ordering USER < ADMIN < SUPERADMIN.
// Higher number means more privileges.
var roleHierarchy = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRole validates a raw role value against the enumeration.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if _, ok := roleHierarchy[r]; !ok {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Roles returns all recognized roles in ascending order of privilege.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
}

// Satisfies reports whether r is at or above the minimum required tier.
// RoleNone as minimum means any authenticated role passes. Unknown role
// values never satisfy anything.
func (r Role) Satisfies(min Role) bool {
	if min == RoleNone {
		return true
	}
	level, ok := roleHierarchy[r]
	if !ok {
		return false
	}
	required, ok := roleHierarchy[min]
	if !ok {
		return false
	}
	return level >= required
}

// User models an operator account managed by the backoffice.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsEnabled    bool      `json:"is_enabled"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated identity attached to a single request.
// It is derived from the session on every request and never persisted.
type Principal struct {
	UserID string
	Role   Role
}
