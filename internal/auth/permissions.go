package auth

import "sort"

// Permission is a "resource:action" capability token from a closed vocabulary.
type Permission string

// Permission constants define the available permissions in the system.
// The vocabulary is fixed at build time: a new permission needs a constant here
// and an entry in allPermissions.
const (
	PermReadDevices   Permission = "read:devices"
	PermWriteDevices  Permission = "write:devices"
	PermDeleteDevices Permission = "delete:devices"

	PermReadModels   Permission = "read:models"
	PermWriteModels  Permission = "write:models"
	PermDeleteModels Permission = "delete:models"

	PermReadConnections   Permission = "read:connections"
	PermWriteConnections  Permission = "write:connections"
	PermDeleteConnections Permission = "delete:connections"

	PermReadAttributes   Permission = "read:attributes"
	PermWriteAttributes  Permission = "write:attributes"
	PermDeleteAttributes Permission = "delete:attributes"

	PermReadLogs   Permission = "read:logs"
	PermWriteLogs  Permission = "write:logs"
	PermDeleteLogs Permission = "delete:logs"

	PermReadFloors   Permission = "read:floors"
	PermWriteFloors  Permission = "write:floors"
	PermDeleteFloors Permission = "delete:floors"

	PermReadDocumentation   Permission = "read:documentation"
	PermWriteDocumentation  Permission = "write:documentation"
	PermDeleteDocumentation Permission = "delete:documentation"

	// PermReadRoles allows listing and viewing roles.
	PermReadRoles Permission = "read:roles"
	// PermWriteRoles allows creating roles and changing their permissions.
	PermWriteRoles Permission = "write:roles"
	// PermDeleteRoles allows deleting roles.
	PermDeleteRoles Permission = "delete:roles"

	// PermReadUsers allows viewing user accounts.
	PermReadUsers Permission = "read:users"
	// PermWriteUsers allows managing user accounts.
	PermWriteUsers Permission = "write:users"

	// PermAdminFull marks full administrative access.
	PermAdminFull Permission = "admin:full"
)

//nolint:gochecknoglobals // closed vocabulary
var allPermissions = []Permission{
	PermReadDevices, PermWriteDevices, PermDeleteDevices,
	PermReadModels, PermWriteModels, PermDeleteModels,
	PermReadConnections, PermWriteConnections, PermDeleteConnections,
	PermReadAttributes, PermWriteAttributes, PermDeleteAttributes,
	PermReadLogs, PermWriteLogs, PermDeleteLogs,
	PermReadFloors, PermWriteFloors, PermDeleteFloors,
	PermReadDocumentation, PermWriteDocumentation, PermDeleteDocumentation,
	PermReadRoles, PermWriteRoles, PermDeleteRoles,
	PermReadUsers, PermWriteUsers,
	PermAdminFull,
}

// AllPermissions returns a copy of the whole permission vocabulary.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)

	return out
}

// IsValid reports whether p belongs to the vocabulary.
func (p Permission) IsValid() bool {
	for _, known := range allPermissions {
		if p == known {
			return true
		}
	}

	return false
}

// PermissionSet is an unordered set of permissions.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from any number of permission lists.
func NewPermissionSet(lists ...[]Permission) PermissionSet {
	set := make(PermissionSet)

	for _, list := range lists {
		for _, p := range list {
			set[p] = struct{}{}
		}
	}

	return set
}

// Has reports whether p is a member of the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Slice returns the members sorted alphabetically. It never returns nil.
func (s PermissionSet) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// ParsePermissions converts raw strings into permissions, rejecting any value
// outside the vocabulary. A nil input yields nil.
func ParsePermissions(raw []string) ([]Permission, error) {
	if raw == nil {
		return nil, nil
	}

	out := make([]Permission, 0, len(raw))

	for _, r := range raw {
		p := Permission(r)
		if !p.IsValid() {
			return nil, invalidPermission(r)
		}

		out = append(out, p)
	}

	return out, nil
}

// Strings converts permissions back to plain strings. A nil input yields nil.
func Strings(perms []Permission) []string {
	if perms == nil {
		return nil
	}

	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}

	return out
}
