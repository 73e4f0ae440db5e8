package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventory-api/inventory-api/internal/db/models"
)

// fakeStore is a CredentialStore with a fixed answer that records calls.
type fakeStore struct {
	user  *models.User
	err   error
	calls int
}

func (s *fakeStore) VerifyCredentials(_ context.Context, _, _ string) (*models.User, error) {
	s.calls++
	return s.user, s.err
}

func newLoginService(t *testing.T, store CredentialStore) (*LoginService, *TokenCodec) {
	t.Helper()

	codec, err := NewTokenCodec([]byte("login-secret"))
	require.NoError(t, err)

	return NewLoginService(store, codec, 15*time.Minute), codec
}

func TestLoginMissingCredentials(t *testing.T) {
	store := &fakeStore{}
	service, _ := newLoginService(t, store)

	for _, creds := range [][2]string{{"", ""}, {"alice", ""}, {"", "secret"}} {
		_, err := service.Login(context.Background(), creds[0], creds[1])
		assert.ErrorIs(t, err, ErrMissingCredentials)
	}

	assert.Zero(t, store.calls, "credential store must not be touched")
}

func TestLoginInvalidCredentials(t *testing.T) {
	service, _ := newLoginService(t, &fakeStore{err: ErrInvalidCredentials})

	identity, err := service.Authenticate(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.Nil(t, identity)

	_, err = service.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginStoreFailure(t *testing.T) {
	service, _ := newLoginService(t, &fakeStore{err: errors.New("socket closed")})

	_, err := service.Authenticate(context.Background(), "alice", "secret")
	require.ErrorIs(t, err, ErrStorage)

	_, err = service.Login(context.Background(), "alice", "secret")
	require.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginSuccess(t *testing.T) {
	store := &fakeStore{user: &models.User{
		ID:          "u-42",
		Username:    "alice",
		Role:        "viewer",
		Permissions: []string{"write:floors", "bogus:perm"},
		Active:      true,
	}}
	service, codec := newLoginService(t, store)

	result, err := service.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, TokenTypeBearer, result.TokenType)
	assert.EqualValues(t, 900, result.ExpiresIn)

	expected := Identity{
		ID:          "u-42",
		Username:    "alice",
		Role:        RoleViewer,
		Permissions: []Permission{PermWriteFloors},
	}
	assert.Equal(t, expected, result.Identity)

	verified, err := codec.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, expected, verified)
}

func TestIdentityFromUserKeepsLegacyShape(t *testing.T) {
	identity := identityFromUser(&models.User{ID: "1", Username: "old", Role: "superuser"})

	assert.Empty(t, identity.Role)
	assert.Nil(t, identity.Permissions)
}
