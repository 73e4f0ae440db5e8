package daemon

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inventory-api/inventory-api/internal/config"
	"github.com/inventory-api/inventory-api/internal/db/dsn"
	"github.com/inventory-api/inventory-api/internal/docstore"
	"github.com/inventory-api/inventory-api/internal/docstore/badgerstore"
	"github.com/inventory-api/inventory-api/internal/docstore/gormstore"
	"github.com/inventory-api/inventory-api/internal/docstore/redisstore"
)

// Store is the opened document store of the configured engine.
type Store struct {
	Driver *docstore.Instrumented
	// Limiter holds the login rate limiter counters; nil keeps them in memory.
	Limiter fiber.Storage
	closers []func() error
}

// Close releases the backend.
func (s *Store) Close() error {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// OpenStore opens the document store backend selected by DB.Engine.
func OpenStore(cfg *config.Config) (*Store, error) {
	var (
		driver docstore.Driver
		store  = &Store{}
		err    error
	)

	switch cfg.DB.Engine {
	case config.EngineRedis:
		driver, err = openRedis(cfg, store)
	case config.EngineBadger:
		driver, err = openBadger(cfg, store)
	default:
		driver, err = openSQL(cfg, store)
	}

	if err != nil {
		_ = store.Close()
		return nil, err
	}

	store.Driver = docstore.Instrument(driver)

	log.Info().Str("engine", cfg.DB.Engine).Str("driver", driver.Name()).Msg("document store opened")

	return store, nil
}

func openSQL(cfg *config.Config, store *Store) (docstore.Driver, error) {
	dialector, err := dsn.Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	store.closers = append(store.closers, sqlDB.Close)

	// an in-memory SQLite database lives in a single connection
	if dsn.SQLite(cfg) == ":memory:" && dialector.Name() == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	}

	driver, err := gormstore.New(db, gormstore.WithConnectTimeout(cfg.DB.ConnectTimeout.Duration))
	if err != nil {
		return nil, err
	}

	if store.Limiter = openLimiterStorage(cfg); store.Limiter != nil {
		store.closers = append(store.closers, store.Limiter.Close)
	}

	if err = driver.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return driver, nil
}

func openRedis(cfg *config.Config, store *Store) (docstore.Driver, error) {
	client := redis.NewClient(dsn.Redis(cfg))
	store.closers = append(store.closers, client.Close)

	opts := []redisstore.Option{redisstore.WithConnectTimeout(cfg.DB.ConnectTimeout.Duration)}
	if cfg.DB.Name != "" {
		opts = append(opts, redisstore.WithPrefix(cfg.DB.Name))
	}

	return redisstore.New(client, opts...)
}

func openBadger(cfg *config.Config, store *Store) (docstore.Driver, error) {
	db, err := badgerstore.Open(cfg.DB.Path)
	if err != nil {
		return nil, err
	}

	store.closers = append(store.closers, db.Close)

	return badgerstore.New(db)
}
