package models

import (
	"sync"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// UsersCollection is the document store collection holding user credentials.
const UsersCollection = "users"

// User represents a user account stored in the users collection, keyed by username.
// Role and Permissions are plain strings here; the auth package validates them
// against its vocabularies when it builds an identity.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the unique username for login and the document key.
	Username string `json:"username"`
	// PasswordHash is the Argon2id hashed password.
	PasswordHash string `json:"passwordHash"`
	// Role is the name of the role assigned to this user. Empty means no role.
	Role string `json:"role,omitempty"`
	// Permissions are explicit per-user permission overrides. Nil means none.
	Permissions []string `json:"permissions"`
	// Active indicates whether the user account is active and can log in.
	Active bool `json:"active"`
	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil {
		log.Error().Err(err).Str("username", u.Username).Msg("failed to verify password")
		return false
	}

	return match
}

//nolint:gochecknoglobals // computed once, on the first failed lookup
var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("inventory-api-dummy-password")
	if err != nil {
		log.Error().Err(err).Msg("failed to create dummy password hash")
	}

	return hash
})

// BurnPasswordCheck runs one Argon2id comparison against a fixed hash, so a
// login on a missing or disabled account costs as much as a wrong password.
func BurnPasswordCheck(password string) {
	_, _ = argon2id.ComparePasswordAndHash(password, dummyHash())
}
