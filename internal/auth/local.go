package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/db/models"
	"github.com/inventory-api/inventory-api/internal/docstore"
)

// CredentialStore verifies a username and password and returns the stored user.
type CredentialStore interface {
	// VerifyCredentials returns ErrInvalidCredentials for an unknown user, a
	// disabled user or a wrong password.
	VerifyCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// NewUser is the payload of LocalProvider.CreateUser.
type NewUser struct {
	Username    string
	Password    string
	Role        string
	Permissions []string
}

// LocalProvider handles authentication against the users collection of the document store.
type LocalProvider struct {
	driver docstore.Driver
	// burn spends the cost of a password check when there is no hash to check.
	burn func(password string)
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(driver docstore.Driver) *LocalProvider {
	return &LocalProvider{
		driver: driver,
		burn:   models.BurnPasswordCheck,
	}
}

func (p *LocalProvider) withUsers(ctx context.Context, op string, fn func(docstore.Collection) error) error {
	conn, err := p.driver.Connect(ctx)
	if err != nil {
		return storageError(op, err)
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Str("op", op).Msg("failed to release document store connection")
		}
	}()

	return fn(conn.Collection(models.UsersCollection))
}

// VerifyCredentials implements CredentialStore.
func (p *LocalProvider) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User

	err := p.withUsers(ctx, "verify credentials", func(users docstore.Collection) error {
		var err error

		user, err = docstore.GetJSON[models.User](ctx, users, username)

		return err
	})

	switch {
	case errors.Is(err, docstore.ErrNotFound), errors.Is(err, docstore.ErrEmptyKey):
		p.burn(password)
		return nil, ErrInvalidCredentials
	case errors.Is(err, ErrStorage):
		return nil, err
	case err != nil:
		return nil, storageError("verify credentials", err)
	}

	if !user.Active {
		log.Debug().Str("username", username).Msg("login attempt on disabled account")
		p.burn(password)

		return nil, ErrInvalidCredentials
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CreateUser creates a new active local user.
func (p *LocalProvider) CreateUser(ctx context.Context, input NewUser) (*models.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	if input.Role != "" {
		if _, err := ParseRole(input.Role); err != nil {
			return nil, err
		}
	}

	if _, err := ParsePermissions(input.Permissions); err != nil {
		return nil, err
	}

	hashedPassword, err := models.HashPassword(input.Password)
	if err != nil {
		return nil, storageError("hash password", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		PasswordHash: hashedPassword,
		Role:         input.Role,
		Permissions:  input.Permissions,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = p.withUsers(ctx, "create user", func(users docstore.Collection) error {
		return docstore.InsertJSON(ctx, users, user.Username, user)
	})

	switch {
	case errors.Is(err, docstore.ErrDuplicateKey):
		return nil, ErrUserAlreadyExists
	case errors.Is(err, ErrStorage):
		return nil, err
	case err != nil:
		return nil, storageError("create user", err)
	}

	log.Info().Str("username", user.Username).Str("role", user.Role).Msg("user created")

	return user, nil
}

// GetUser retrieves a user by username.
func (p *LocalProvider) GetUser(ctx context.Context, username string) (*models.User, error) {
	var user *models.User

	err := p.withUsers(ctx, "get user", func(users docstore.Collection) error {
		var err error

		user, err = docstore.GetJSON[models.User](ctx, users, username)

		return err
	})

	switch {
	case errors.Is(err, docstore.ErrNotFound), errors.Is(err, docstore.ErrEmptyKey):
		return nil, ErrUserNotFound
	case errors.Is(err, ErrStorage):
		return nil, err
	case err != nil:
		return nil, storageError("get user", err)
	}

	return user, nil
}

// CountUsers returns the number of stored users, active or not.
func (p *LocalProvider) CountUsers(ctx context.Context) (int, error) {
	count := 0

	err := p.withUsers(ctx, "count users", func(users docstore.Collection) error {
		docs, err := users.List(ctx)
		count = len(docs)

		return err
	})

	switch {
	case errors.Is(err, ErrStorage):
		return 0, err
	case err != nil:
		return 0, storageError("count users", err)
	}

	return count, nil
}

// SetActive enables or disables the login of a user.
func (p *LocalProvider) SetActive(ctx context.Context, username string, active bool) error {
	err := p.withUsers(ctx, "set user active", func(users docstore.Collection) error {
		_, err := docstore.UpdateJSON(ctx, users, username, func(user *models.User) error {
			user.Active = active
			user.UpdatedAt = time.Now()

			return nil
		})

		return err
	})

	switch {
	case errors.Is(err, docstore.ErrNotFound), errors.Is(err, docstore.ErrEmptyKey):
		return ErrUserNotFound
	case errors.Is(err, ErrStorage):
		return err
	case err != nil:
		return storageError("set user active", err)
	}

	log.Info().Str("username", username).Bool("active", active).Msg("user activation changed")

	return nil
}
