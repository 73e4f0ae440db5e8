// Package auth provides authentication and role-based authorization for the inventory API.
//
// # Tokens
//
// TokenCodec mints and verifies HS256 signed bearer tokens. A token carries an
// Identity snapshot (id, username, role, explicit permissions) and is valid
// until it expires; verification reports every failure as ErrInvalidToken.
//
// # Authorization Model
//
// Permissions are "resource:action" strings from a closed vocabulary and roles
// are named bundles of default permissions:
//   - admin: every permission
//   - user: read and write on the inventory collections
//   - viewer: read on the inventory collections
//
// The effective permissions of an identity are its role defaults plus its
// explicit overrides. Role defaults come from a RoleDefaultsSource: either the
// static table (StaticRoleDefaults) or the persisted catalog (*RoleDirectory).
//
// # Role Catalog
//
// RoleDirectory persists roles in the "roles" collection of the document
// store. Role names are unique among active roles, the admin role cannot be
// deleted and every stored permission belongs to the vocabulary.
//
// # Middleware
//
// Fiber middleware factories consult the identity attached by the
// authentication gate:
//   - RequireRole: exact role match
//   - RequirePermission: a single permission
//   - RequireAnyPermission: at least one of several permissions
//   - RequireAllPermissions: all of several permissions
//
// Example usage:
//
//	directory := auth.NewRoleDirectory(driver)
//	app.Delete("/api/roles/:name",
//	    gate.RequireAuth(),
//	    auth.RequireRole(auth.RoleAdmin),
//	    auth.RequirePermission(directory, auth.PermDeleteRoles),
//	    handler,
//	)
package auth
