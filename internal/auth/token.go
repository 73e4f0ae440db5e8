package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verifier turns a bearer token into an identity.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// tokenClaims is the JWT payload: the identity snapshot plus registered claims.
type tokenClaims struct {
	jwt.RegisteredClaims
	Username    string       `json:"username"`
	Role        Role         `json:"role,omitempty"`
	Permissions []Permission `json:"permissions"`
}

// TokenCodec mints and verifies HS256 signed bearer tokens.
// The secret is copied at construction and never changes afterwards.
type TokenCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// TokenOption configures a TokenCodec.
type TokenOption func(*TokenCodec)

// WithIssuer sets the "iss" claim and requires it on verification.
func WithIssuer(issuer string) TokenOption {
	return func(c *TokenCodec) {
		c.issuer = issuer
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a codec signing with secret.
func NewTokenCodec(secret []byte, opts ...TokenOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Mint signs a token for identity valid for ttl.
func (c *TokenCodec) Mint(identity Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	if identity.ID == "" {
		return "", fmt.Errorf("%w: identity id is required", ErrInvalidInput)
	}

	now := c.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Username:    identity.Username,
		Role:        identity.Role,
		Permissions: identity.Permissions,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded
// identity. Every failure is reported as ErrInvalidToken.
func (c *TokenCodec) Verify(token string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Identity{}, ErrInvalidToken
	}

	if claims.Role != "" && !claims.Role.IsValid() {
		return Identity{}, ErrInvalidToken
	}

	for _, p := range claims.Permissions {
		if !p.IsValid() {
			return Identity{}, ErrInvalidToken
		}
	}

	return Identity{
		ID:          claims.Subject,
		Username:    claims.Username,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, nil
}
