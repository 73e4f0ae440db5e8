// Package daemon opens the document store, builds the authentication core and
// runs the web service.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/config"
	"github.com/inventory-api/inventory-api/internal/web"
)

// ErrNilConfig is returned by New without a configuration.
var ErrNilConfig = errors.New("config is nil")

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	store      *Store
	webService *web.Service
}

// Start serves HTTP until SIGINT or SIGTERM, then releases the document store.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	errStart := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))

	return errors.Join(errStart, d.store.Close())
}

// Web returns the web service.
func (d *Daemon) Web() *web.Service {
	return d.webService
}

// Close releases the document store without starting the server.
func (d *Daemon) Close() error {
	return d.store.Close()
}

// New creates a new Daemon instance with the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	core, err := newCore(ctx, cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	webService, err := web.New(cfg, core)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Daemon{
		cfg:        cfg,
		store:      store,
		webService: webService,
	}, nil
}

func newCore(ctx context.Context, cfg *config.Config, store *Store) (web.Core, error) {
	codec, err := auth.NewTokenCodec([]byte(cfg.Auth.JWTSecret), auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return web.Core{}, err
	}

	roles := auth.NewRoleDirectory(store.Driver)

	if _, err = roles.InitializeDefaultRoles(ctx); err != nil {
		return web.Core{}, fmt.Errorf("initializing default roles: %w", err)
	}

	users := auth.NewLocalProvider(store.Driver)

	if err = seed(ctx, cfg, users); err != nil {
		return web.Core{}, err
	}

	var defaults auth.RoleDefaultsSource = auth.StaticRoleDefaults{}
	if cfg.Auth.LiveRolePermissions {
		defaults = roles

		log.Info().Msg("role permissions are resolved from the role catalog")
	}

	return web.Core{
		Codec:    codec,
		Roles:    roles,
		Defaults: defaults,
		Login:    auth.NewLoginService(users, codec, cfg.Auth.TokenTTL.Duration),
		Limiter:  store.Limiter,
	}, nil
}
