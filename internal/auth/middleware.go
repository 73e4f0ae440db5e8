package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const msgAuthenticationRequired = "Authentication required"

// RequireRole creates Fiber middleware that only lets identities with exactly
// role through. It panics when role is not part of the vocabulary, so a typo
// fails at route registration.
func RequireRole(role Role) fiber.Handler {
	if !role.IsValid() {
		panic(fmt.Sprintf("auth: RequireRole with unknown role %q", role))
	}

	const gate = "require_role"

	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			ObserveGateDecision(gate, OutcomeRejected)
			return Reject(c, fiber.StatusUnauthorized, msgAuthenticationRequired)
		}

		if !identity.HasRole() {
			ObserveGateDecision(gate, OutcomeRejected)
			log.Warn().Str("user_id", identity.ID).Msg("No role assigned to user")

			return Reject(c, fiber.StatusForbidden, "No role assigned to user")
		}

		if !HasRole(identity, role) {
			ObserveGateDecision(gate, OutcomeRejected)
			log.Warn().Str("user_id", identity.ID).Str("role", string(identity.Role)).
				Str("required", string(role)).Msg("User lacks required role")

			return Reject(c, fiber.StatusForbidden, "Access denied. Required role: "+string(role))
		}

		ObserveGateDecision(gate, OutcomeAllowed)

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
// Role defaults come from source; the identity's overrides are added on top.
func RequirePermission(source RoleDefaultsSource, permission Permission) fiber.Handler {
	mustBeValid("RequirePermission", permission)

	return permissionGate("require_permission", source, func(effective PermissionSet) (bool, string) {
		return effective.Has(permission), "Access denied. Required permission: " + string(permission)
	})
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(source RoleDefaultsSource, permissions ...Permission) fiber.Handler {
	mustBeValid("RequireAnyPermission", permissions...)

	return permissionGate("require_any_permission", source, func(effective PermissionSet) (bool, string) {
		for _, p := range permissions {
			if effective.Has(p) {
				return true, ""
			}
		}

		return false, "Access denied. Required one of permissions: " + strings.Join(Strings(permissions), ", ")
	})
}

// RequireAllPermissions creates Fiber middleware that requires all the given permissions.
func RequireAllPermissions(source RoleDefaultsSource, permissions ...Permission) fiber.Handler {
	mustBeValid("RequireAllPermissions", permissions...)

	return permissionGate("require_all_permissions", source, func(effective PermissionSet) (bool, string) {
		for _, p := range permissions {
			if !effective.Has(p) {
				return false, "Access denied. Required permission: " + string(p)
			}
		}

		return true, ""
	})
}

func mustBeValid(factory string, permissions ...Permission) {
	if len(permissions) == 0 {
		panic(fmt.Sprintf("auth: %s without permissions", factory))
	}

	for _, p := range permissions {
		if !p.IsValid() {
			panic(fmt.Sprintf("auth: %s with unknown permission %q", factory, p))
		}
	}
}

func permissionGate(
	gate string,
	source RoleDefaultsSource,
	check func(effective PermissionSet) (bool, string),
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			ObserveGateDecision(gate, OutcomeRejected)
			return Reject(c, fiber.StatusUnauthorized, msgAuthenticationRequired)
		}

		defaults, err := source.RoleDefaults(c.UserContext(), identity.Role)
		if err != nil {
			ObserveGateDecision(gate, OutcomeError)
			log.Error().Err(err).Str("user_id", identity.ID).Str("role", string(identity.Role)).
				Msg("Failed to load role permissions")

			return Reject(c, fiber.StatusInternalServerError, "Authorization service error")
		}

		allowed, message := check(EffectivePermissions(identity, defaults))
		if !allowed {
			ObserveGateDecision(gate, OutcomeRejected)
			log.Warn().Str("user_id", identity.ID).Str("role", string(identity.Role)).
				Msg("User lacks required permissions")

			return Reject(c, fiber.StatusForbidden, message)
		}

		ObserveGateDecision(gate, OutcomeAllowed)

		return c.Next()
	}
}
