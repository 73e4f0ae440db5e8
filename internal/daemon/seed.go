package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/dchest/uniuri"
	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/config"
)

// seed creates the administrative user when the users collection is empty.
// Without Auth.AdminPassword a random password is generated and logged once.
func seed(ctx context.Context, cfg *config.Config, users *auth.LocalProvider) error {
	count, err := users.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}

	if count > 0 {
		return nil
	}

	password := cfg.Auth.AdminPassword
	generated := password == ""

	if generated {
		password = uniuri.NewLen(uniuri.UUIDLen)
	}

	_, err = users.CreateUser(ctx, auth.NewUser{
		Username: cfg.Auth.AdminUsername,
		Password: password,
		Role:     string(auth.RoleAdmin),
	})

	switch {
	case errors.Is(err, auth.ErrUserAlreadyExists):
		// another instance seeded first
		return nil
	case err != nil:
		return fmt.Errorf("seeding admin user: %w", err)
	}

	if generated {
		log.Warn().Str("username", cfg.Auth.AdminUsername).Str("password", password).
			Msg("created admin user with a generated password, store it now, it is not shown again")
	} else {
		log.Info().Str("username", cfg.Auth.AdminUsername).Msg("created admin user")
	}

	return nil
}
