package models

// Role is a team member's access level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTech   Role = "tech"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTech, RoleViewer:
		return true
	}
	return false
}

// Capability tags. They are informational only; nothing checks them before
// a mutation.
const (
	PermissionAll        = "all"
	PermissionRestricted = "restricted"
)

// PermissionsFor derives the capability tags granted to a role.
func PermissionsFor(r Role) []string {
	if r == RoleAdmin {
		return []string{PermissionAll}
	}
	return []string{PermissionRestricted}
}

// User is a dashboard team member.
type User struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
}

// Clone returns a copy of u with its own permissions slice.
func (u User) Clone() User {
	u.Permissions = append([]string(nil), u.Permissions...)
	return u
}
