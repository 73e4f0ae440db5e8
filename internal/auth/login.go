package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/db/models"
)

// TokenTypeBearer is the token type returned by Login.
const TokenTypeBearer = "Bearer"

// Minter signs tokens for identities.
type Minter interface {
	Mint(identity Identity, ttl time.Duration) (string, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string   `json:"token"`
	TokenType string   `json:"tokenType"`
	ExpiresIn int64    `json:"expiresIn"`
	Identity  Identity `json:"identity"`
}

// LoginService exchanges credentials for a signed token.
type LoginService struct {
	store  CredentialStore
	minter Minter
	ttl    time.Duration
}

// NewLoginService creates a login service issuing tokens valid for ttl.
func NewLoginService(store CredentialStore, minter Minter, ttl time.Duration) *LoginService {
	return &LoginService{
		store:  store,
		minter: minter,
		ttl:    ttl,
	}
}

// Authenticate returns the identity of the user, or nil for any credential
// failure. Unknown users and wrong passwords are not distinguished.
func (s *LoginService) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	user, err := s.store.VerifyCredentials(ctx, username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, nil //nolint:nilnil // nil identity means "not authenticated"
	}

	if err != nil {
		if !errors.Is(err, ErrStorage) {
			err = storageError("verify credentials", err)
		}

		return nil, err
	}

	identity := identityFromUser(user)

	return &identity, nil
}

// Login checks the credentials and mints a token for the resulting identity.
func (s *LoginService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if identity == nil {
		log.Warn().Str("username", username).Msg("login failed: invalid credentials")
		return nil, ErrInvalidCredentials
	}

	token, err := s.minter.Mint(*identity, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("minting token: %w", err)
	}

	log.Info().Str("username", identity.Username).Str("role", string(identity.Role)).Msg("user logged in")

	return &LoginResult{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresIn: int64(s.ttl / time.Second),
		Identity:  *identity,
	}, nil
}

// identityFromUser resolves the stored user into an identity. Role and
// permission values outside the vocabularies are dropped.
func identityFromUser(user *models.User) Identity {
	identity := Identity{
		ID:       user.ID,
		Username: user.Username,
	}

	if user.Role != "" {
		role, err := ParseRole(user.Role)
		if err != nil {
			log.Warn().Str("username", user.Username).Str("role", user.Role).Msg("ignoring unknown role of user")
		}

		identity.Role = role
	}

	if user.Permissions != nil {
		identity.Permissions = make([]Permission, 0, len(user.Permissions))

		for _, raw := range user.Permissions {
			p := Permission(raw)
			if !p.IsValid() {
				log.Warn().Str("username", user.Username).Str("permission", raw).
					Msg("ignoring unknown permission of user")

				continue
			}

			identity.Permissions = append(identity.Permissions, p)
		}
	}

	return identity
}
