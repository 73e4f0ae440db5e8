package auth

import "github.com/gofiber/fiber/v2"

// identityLocalsKey is the fiber.Ctx.Locals key holding the request identity.
const identityLocalsKey = "auth.identity"

// Identity is the verified caller of one request.
type Identity struct {
	// ID is the user identifier (the token subject).
	ID string `json:"id"`
	// Username is the login name.
	Username string `json:"username"`
	// Role is empty for tokens issued without a role.
	Role Role `json:"role,omitempty"`
	// Permissions are explicit overrides on top of the role defaults. Nil means none.
	Permissions []Permission `json:"permissions"`
}

// HasRole reports whether the identity carries a role at all.
func (i Identity) HasRole() bool {
	return i.Role != ""
}

// SetIdentity attaches id to the request.
func SetIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(identityLocalsKey, id)
}

// IdentityFromContext returns the identity attached to the request, if any.
func IdentityFromContext(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityLocalsKey).(Identity)
	return id, ok
}
