package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock for token tests.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func newTestCodec(t *testing.T, opts ...TokenOption) (*TokenCodec, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	codec, err := NewTokenCodec([]byte("test-secret"), append([]TokenOption{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)

	return codec, clock
}

func TestNewTokenCodec(t *testing.T) {
	_, err := NewTokenCodec(nil)
	assert.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewTokenCodec([]byte{})
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestTokenRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		identity Identity
	}{
		{
			name: "full identity",
			identity: Identity{
				ID:          "u-1",
				Username:    "alice",
				Role:        RoleUser,
				Permissions: []Permission{PermDeleteDevices, PermReadUsers},
			},
		},
		{
			name:     "empty overrides",
			identity: Identity{ID: "u-2", Username: "bob", Role: RoleViewer, Permissions: []Permission{}},
		},
		{
			name:     "legacy identity without role or overrides",
			identity: Identity{ID: "u-3", Username: "carol"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			codec, clock := newTestCodec(t)

			token, err := codec.Mint(tc.identity, time.Hour)
			require.NoError(t, err)

			clock.now = clock.now.Add(59 * time.Minute)

			got, err := codec.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tc.identity, got)

			clock.now = clock.now.Add(2 * time.Minute)

			_, err = codec.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMintRejectsBadInput(t *testing.T) {
	codec, _ := newTestCodec(t)

	_, err := codec.Mint(Identity{ID: "1"}, 0)
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = codec.Mint(Identity{ID: "1"}, -time.Second)
	require.ErrorIs(t, err, ErrInvalidTTL)

	_, err = codec.Mint(Identity{Username: "nobody"}, time.Hour)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerifyRejects(t *testing.T) {
	codec, clock := newTestCodec(t)

	valid, err := codec.Mint(Identity{ID: "1", Role: RoleAdmin}, time.Hour)
	require.NoError(t, err)

	other, err := NewTokenCodec([]byte("other-secret"), WithClock(clock.Now))
	require.NoError(t, err)

	foreign, err := other.Mint(Identity{ID: "1", Role: RoleAdmin}, time.Hour)
	require.NoError(t, err)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
		Role: RoleAdmin,
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	unknownRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
		Role: "root",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	testCases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"tampered":       tampered,
		"foreign secret": foreign,
		"alg none":       unsigned,
		"other hmac alg": hs512,
		"no expiry":      noExpiry,
		"no subject":     noSubject,
		"unknown role":   unknownRole,
	}

	for name, token := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(token)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestIssuer(t *testing.T) {
	codec, clock := newTestCodec(t, WithIssuer("inventory-api"))

	token, err := codec.Mint(Identity{ID: "1"}, time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.NoError(t, err)

	other, err := NewTokenCodec([]byte("test-secret"), WithClock(clock.Now), WithIssuer("someone-else"))
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
