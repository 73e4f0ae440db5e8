package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventory-api/inventory-api/internal/db/models"
	"github.com/inventory-api/inventory-api/internal/docstore"
	"github.com/inventory-api/inventory-api/internal/docstore/docstoretest"
)

func TestLocalProvider(t *testing.T) {
	driver := docstoretest.Memory(t)
	provider := NewLocalProvider(driver)
	ctx := context.Background()

	count, err := provider.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	user, err := provider.CreateUser(ctx, NewUser{Username: "alice", Password: "s3cret", Role: "user"})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.True(t, user.Active)

	_, err = provider.CreateUser(ctx, NewUser{Username: "alice", Password: "other"})
	require.ErrorIs(t, err, ErrUserAlreadyExists)

	verified, err := provider.VerifyCredentials(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	_, err = provider.VerifyCredentials(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = provider.VerifyCredentials(ctx, "mallory", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = provider.VerifyCredentials(ctx, "", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	fetched, err := provider.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user", fetched.Role)

	_, err = provider.GetUser(ctx, "mallory")
	require.ErrorIs(t, err, ErrUserNotFound)

	count, err = provider.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Zero(t, driver.OpenConns())
}

func TestLocalProviderRejectsDisabledUser(t *testing.T) {
	driver := docstoretest.Memory(t)
	provider := NewLocalProvider(driver)
	ctx := context.Background()

	hash, err := models.HashPassword("pw")
	require.NoError(t, err)

	conn, err := driver.Connect(ctx)
	require.NoError(t, err)

	require.NoError(t, docstore.InsertJSON(ctx, conn.Collection(models.UsersCollection), "bob", models.User{
		ID:           "b",
		Username:     "bob",
		PasswordHash: hash,
		Active:       false,
	}))
	require.NoError(t, conn.Close())

	_, err = provider.VerifyCredentials(ctx, "bob", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalProviderValidation(t *testing.T) {
	provider := NewLocalProvider(docstoretest.Memory(t))
	ctx := context.Background()

	_, err := provider.CreateUser(ctx, NewUser{Username: "x"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = provider.CreateUser(ctx, NewUser{Username: "x", Password: "y", Role: "root"})
	require.ErrorIs(t, err, ErrInvalidRoleName)

	_, err = provider.CreateUser(ctx, NewUser{Username: "x", Password: "y", Permissions: []string{"nope"}})
	require.ErrorIs(t, err, ErrInvalidPermission)
}

func TestLocalProviderStorageFailure(t *testing.T) {
	provider := NewLocalProvider(failingDriver{})

	_, err := provider.VerifyCredentials(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalProviderSetActive(t *testing.T) {
	provider := NewLocalProvider(docstoretest.Memory(t))
	ctx := context.Background()

	_, err := provider.CreateUser(ctx, NewUser{Username: "carol", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, provider.SetActive(ctx, "carol", false))

	_, err = provider.VerifyCredentials(ctx, "carol", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, provider.SetActive(ctx, "carol", true))

	user, err := provider.VerifyCredentials(ctx, "carol", "pw")
	require.NoError(t, err)
	assert.True(t, user.Active)

	assert.ErrorIs(t, provider.SetActive(ctx, "nobody", true), ErrUserNotFound)
}

func TestLocalProviderSpendsHashCostOnEveryRejection(t *testing.T) {
	provider := NewLocalProvider(docstoretest.Memory(t))
	ctx := context.Background()

	var burned []string
	provider.burn = func(password string) {
		burned = append(burned, password)
	}

	_, err := provider.CreateUser(ctx, NewUser{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = provider.CreateUser(ctx, NewUser{Username: "bob", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, provider.SetActive(ctx, "bob", false))

	testCases := []struct {
		name       string
		username   string
		password   string
		wantBurned bool
	}{
		{name: "unknown user", username: "mallory", password: "guess", wantBurned: true},
		{name: "disabled user", username: "bob", password: "pw", wantBurned: true},
		{name: "wrong password", username: "alice", password: "guess", wantBurned: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			burned = nil

			_, err := provider.VerifyCredentials(ctx, tc.username, tc.password)
			require.ErrorIs(t, err, ErrInvalidCredentials)

			if tc.wantBurned {
				assert.Equal(t, []string{tc.password}, burned)
			} else {
				assert.Empty(t, burned, "the stored hash is compared instead")
			}
		})
	}
}
