package auth

// Role names carried in the JWT "role" claim.
const (
	RoleMember     = "member"
	RoleLibrarian  = "librarian"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

var validRoles = map[string]struct{}{
	RoleMember:     {},
	RoleLibrarian:  {},
	RoleAdmin:      {},
	RoleSuperAdmin: {},
}

func IsValidRole(role string) bool {
	_, ok := validRoles[role]
	return ok
}

// IsStaff reports whether the role may act on other members' data.
func IsStaff(role string) bool {
	return role == RoleLibrarian || role == RoleAdmin || role == RoleSuperAdmin
}

// StaffRoles is the argument list for RequireRole on librarian-level routes.
func StaffRoles() []string { return []string{RoleLibrarian, RoleAdmin, RoleSuperAdmin} }

// AdminRoles is the argument list for RequireRole on admin-level routes.
func AdminRoles() []string { return []string{RoleAdmin, RoleSuperAdmin} }
