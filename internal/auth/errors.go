package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySecret is returned when a token codec is created without a signing secret.
	ErrEmptySecret = errors.New("token signing secret cannot be empty")

	// ErrInvalidTTL is returned when a token is minted with a non-positive lifetime.
	ErrInvalidTTL = errors.New("token ttl must be positive")

	// ErrInvalidToken is the single failure of token verification. Malformed,
	// badly signed and expired tokens are not distinguished.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidInput is returned when a required field is missing.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRoleName is returned for a role name outside the role vocabulary.
	ErrInvalidRoleName = errors.New("invalid role name")

	// ErrInvalidPermission is returned for a permission outside the permission vocabulary.
	ErrInvalidPermission = errors.New("invalid permission")

	// ErrRoleAlreadyExists is returned when creating a role whose name is already active.
	ErrRoleAlreadyExists = errors.New("role already exists")

	// ErrRoleNotFound is returned when no active role carries the requested name.
	ErrRoleNotFound = errors.New("role not found")

	// ErrProtectedRole is returned when deleting the administrative role or
	// narrowing its permissions.
	ErrProtectedRole = errors.New("role is protected")

	// ErrStorage wraps every unexpected failure of the backing document store.
	ErrStorage = errors.New("storage failure")

	// ErrInvalidCredentials is returned for an unknown user, a disabled user or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingCredentials is returned when the username or the password is empty.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrUserAlreadyExists is returned when creating a user with a taken username.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrUserNotFound is returned when a user cannot be found in the users collection.
	ErrUserNotFound = errors.New("user not found")
)

// RoleError carries the message shown to API clients and unwraps to one of
// the sentinel errors above.
type RoleError struct {
	Err     error
	Message string
}

func (e *RoleError) Error() string {
	return e.Message
}

func (e *RoleError) Unwrap() error {
	return e.Err
}

func invalidRoleName(name string) error {
	return &RoleError{Err: ErrInvalidRoleName, Message: fmt.Sprintf("Invalid role name: %s", name)}
}

func invalidPermission(perm string) error {
	return &RoleError{Err: ErrInvalidPermission, Message: fmt.Sprintf("Invalid permission: %s", perm)}
}

func roleAlreadyExists(name Role) error {
	return &RoleError{Err: ErrRoleAlreadyExists, Message: fmt.Sprintf("Role %s already exists", name)}
}

func roleNotFound(name Role) error {
	return &RoleError{Err: ErrRoleNotFound, Message: fmt.Sprintf("Role %s not found", name)}
}

func protectedRole() error {
	return &RoleError{Err: ErrProtectedRole, Message: "Cannot delete ADMIN role"}
}

func protectedAdminPermissions() error {
	return &RoleError{Err: ErrProtectedRole, Message: "ADMIN role must keep every permission"}
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
