package walks

// UserRole is the principal's global role. The model is a flat enum: ADMIN
// does not imply USER. Operations that both roles may perform declare an
// explicit allowed set and check membership.
type UserRole = string

const (
	// RoleUser is a regular account that can post and manage its own walks.
	RoleUser UserRole = "USER"
	// RoleAdmin is an administrator that can manage any walk and any account.
	RoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles.
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole.
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// RoleSet is an explicit allowed-roles list evaluated by membership.
type RoleSet []UserRole

// AnyAuthenticated is the allowed set used by operations every logged-in
// account may perform. Both roles are named deliberately; there is no
// implied hierarchy.
var AnyAuthenticated = RoleSet{RoleUser, RoleAdmin}

// AdminOnly restricts an operation to administrators.
var AdminOnly = RoleSet{RoleAdmin}

// Contains reports whether the role is a member of the set.
func (s RoleSet) Contains(role UserRole) bool {
	for _, candidate := range s {
		if candidate == role {
			return true
		}
	}
	return false
}
