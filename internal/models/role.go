package models

import "strings"

// Role is the single account class a user holds. The set is closed.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAffiliate Role = "AFFILIATE"
	RoleStaff     Role = "STAFF"
	RoleAdmin     Role = "ADMIN"
	RoleOwner     Role = "OWNER"
	RoleSales     Role = "SALES"
)

var allRoles = []Role{RoleUser, RoleAffiliate, RoleStaff, RoleAdmin, RoleOwner, RoleSales}

// Roles returns every known role in declaration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

func IsValidRole(role Role) bool {
	for _, r := range allRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole normalizes raw input ("admin", " Owner ") into a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !IsValidRole(role) {
		return "", false
	}
	return role, true
}

// HasAnyRole reports whether role is one of allowed.
func HasAnyRole(role Role, allowed ...Role) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// IsModerator reports whether role may manage content owned by others.
func IsModerator(role Role) bool {
	return HasAnyRole(role, RoleStaff, RoleAdmin, RoleOwner)
}
