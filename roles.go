package auth

// UserRole is the user's role. The set is closed: route policies and token
// claims only ever carry one of the three values below.
type UserRole = string

const (
	// RoleMember is an ordinary church-scoped member.
	RoleMember UserRole = "member"
	// RoleAdmin administers a single church.
	RoleAdmin UserRole = "admin"
	// RoleSuperAdmin is the elevated tenant administrator; the only role
	// whose tokens may carry an empty church claim.
	RoleSuperAdmin UserRole = "superadmin"
)

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleMember, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// RoleIsAtLeast checks if a role meets the minimum required level
func RoleIsAtLeast(r, minRole UserRole) bool {
	currentLevel, ok := roleLevel(r)
	if !ok {
		return false
	}

	minLevel, ok := roleLevel(minRole)
	if !ok {
		return false
	}

	return currentLevel >= minLevel
}

func roleLevel(r UserRole) (int, bool) {
	switch r {
	case RoleMember:
		return 0, true
	case RoleAdmin:
		return 1, true
	case RoleSuperAdmin:
		return 2, true
	default:
		return 0, false
	}
}

// AllRoles returns the predefined roles in hierarchical order
func AllRoles() []UserRole {
	return []UserRole{RoleMember, RoleAdmin, RoleSuperAdmin}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}
