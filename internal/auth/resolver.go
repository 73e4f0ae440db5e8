package auth

//nolint:gochecknoglobals // static role table
var defaultPermissions = map[Role][]Permission{
	RoleAdmin: allPermissions,
	RoleUser: {
		PermReadDevices, PermWriteDevices,
		PermReadModels, PermWriteModels,
		PermReadConnections, PermWriteConnections,
		PermReadAttributes, PermWriteAttributes,
		PermReadLogs, PermWriteLogs,
		PermReadFloors, PermWriteFloors,
		PermReadDocumentation, PermWriteDocumentation,
	},
	RoleViewer: {
		PermReadDevices,
		PermReadModels,
		PermReadConnections,
		PermReadAttributes,
		PermReadLogs,
		PermReadFloors,
		PermReadDocumentation,
	},
}

// DefaultPermissions returns a copy of the static default permissions of role.
// Unknown and empty roles have none.
func DefaultPermissions(role Role) []Permission {
	perms := defaultPermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)

	return out
}

// EffectivePermissions is the union of the role defaults and the identity's
// explicit overrides. Missing overrides count as an empty set.
func EffectivePermissions(identity Identity, roleDefaults []Permission) PermissionSet {
	return NewPermissionSet(roleDefaults, identity.Permissions)
}

// HasPermission reports whether required is among the effective permissions.
func HasPermission(identity Identity, roleDefaults []Permission, required Permission) bool {
	return EffectivePermissions(identity, roleDefaults).Has(required)
}

// HasRole reports whether the identity carries exactly the required role.
// An identity without a role never matches.
func HasRole(identity Identity, required Role) bool {
	return identity.HasRole() && identity.Role == required
}
