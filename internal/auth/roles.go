package auth

// Role names a bundle of default permissions.
type Role string

// Built-in roles. Adding a role means adding a constant, an entry in
// ValidRoles and an entry in the default permission table.
const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// ValidRoles lists the role vocabulary in seeding order.
//
//nolint:gochecknoglobals // closed vocabulary
var ValidRoles = []Role{RoleAdmin, RoleUser, RoleViewer}

// IsValid reports whether r belongs to the role vocabulary.
func (r Role) IsValid() bool {
	for _, known := range ValidRoles {
		if r == known {
			return true
		}
	}

	return false
}

// ParseRole validates a raw role name. The empty string is not a role.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.IsValid() {
		return "", invalidRoleName(raw)
	}

	return r, nil
}
