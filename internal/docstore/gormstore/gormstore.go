// Package gormstore implements the document store on top of a relational
// database through gorm. Every collection lives in the shared "documents" table.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inventory-api/inventory-api/internal/db/models"
	"github.com/inventory-api/inventory-api/internal/docstore"
)

const (
	whereCollectionAndKey = "collection = ? AND doc_key = ?"

	whereCollection = "collection = ?"

	dialectSQLite = "sqlite"
)

// ErrDBNil is returned when the driver is created without a database connection.
var ErrDBNil = errors.New("database connection is nil")

// Driver is a docstore.Driver backed by gorm.
type Driver struct {
	db             *gorm.DB
	connectTimeout time.Duration
	rowLocking     bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithConnectTimeout bounds the connection health check done by Connect.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.connectTimeout = timeout
	}
}

// New creates a driver on an opened gorm database. Dialect errors are
// translated so that a lost insert race surfaces as gorm.ErrDuplicatedKey.
func New(db *gorm.DB, opts ...Option) (*Driver, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	db.Config.TranslateError = true

	d := &Driver{
		db:             db,
		connectTimeout: docstore.DefaultConnectTimeout,
		// SQLite serialises writers and has no row level locks.
		rowLocking: db.Dialector.Name() != dialectSQLite,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Migrate creates or updates the documents table.
func (d *Driver) Migrate() error {
	if err := d.db.AutoMigrate(&models.Document{}); err != nil {
		return fmt.Errorf("migrating documents table: %w", err)
	}

	return nil
}

// Name implements docstore.Driver.
func (d *Driver) Name() string {
	return "gorm-" + d.db.Dialector.Name()
}

// Connect checks that the database is reachable and returns a connection handle.
func (d *Driver) Connect(ctx context.Context) (docstore.Conn, error) {
	sqlDB, err := d.db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
	}

	pingCtx, cancel := docstore.ConnectContext(ctx, d.connectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
	}

	return &conn{driver: d}, nil
}

type conn struct {
	driver *Driver
	closed atomic.Bool
}

func (c *conn) Collection(name string) docstore.Collection {
	return &collection{conn: c, name: name}
}

func (c *conn) Close() error {
	c.closed.Store(true)
	return nil
}

type collection struct {
	conn *conn
	name string
}

// session returns a gorm session bound to ctx or ErrClosed.
func (c *collection) session(ctx context.Context) (*gorm.DB, error) {
	if c.conn.closed.Load() {
		return nil, docstore.ErrClosed
	}

	return c.conn.driver.db.WithContext(ctx), nil
}

func (c *collection) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, docstore.ErrEmptyKey
	}

	db, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	var doc models.Document

	err = db.Where(whereCollectionAndKey, c.name, key).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, docstore.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("loading %s/%s: %w", c.name, key, err)
	}

	return doc.Body, nil
}

func (c *collection) List(ctx context.Context) ([][]byte, error) {
	db, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	if err := db.Where(whereCollection, c.name).Order("doc_key").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.name, err)
	}

	out := make([][]byte, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Body)
	}

	return out, nil
}

func (c *collection) Insert(ctx context.Context, key string, body []byte) error {
	if key == "" {
		return docstore.ErrEmptyKey
	}

	db, err := c.session(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Document{}).
			Where(whereCollectionAndKey, c.name, key).
			Count(&count).Error; err != nil {
			return fmt.Errorf("checking %s/%s: %w", c.name, key, err)
		}

		if count > 0 {
			return docstore.ErrDuplicateKey
		}

		doc := models.Document{
			Collection: c.name,
			Key:        key,
			Body:       body,
		}

		if err := tx.Create(&doc).Error; err != nil {
			// a concurrent insert won the race for the unique index
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return docstore.ErrDuplicateKey
			}

			return fmt.Errorf("inserting %s/%s: %w", c.name, key, err)
		}

		return nil
	})
}

func (c *collection) Update(ctx context.Context, key string, fn docstore.UpdateFunc) ([]byte, error) {
	if key == "" {
		return nil, docstore.ErrEmptyKey
	}

	db, err := c.session(ctx)
	if err != nil {
		return nil, err
	}

	var next []byte

	err = db.Transaction(func(tx *gorm.DB) error {
		query := tx
		if c.conn.driver.rowLocking {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var doc models.Document

		err := query.Where(whereCollectionAndKey, c.name, key).First(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return docstore.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("loading %s/%s: %w", c.name, key, err)
		}

		next, err = fn(doc.Body)
		if err != nil {
			return err
		}

		if err := tx.Model(&doc).Updates(map[string]interface{}{
			"body":       next,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("updating %s/%s: %w", c.name, key, err)
		}

		return nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // errors are wrapped inside the transaction
	}

	return next, nil
}

func (c *collection) Delete(ctx context.Context, key string) error {
	if key == "" {
		return docstore.ErrEmptyKey
	}

	db, err := c.session(ctx)
	if err != nil {
		return err
	}

	result := db.Where(whereCollectionAndKey, c.name, key).Delete(&models.Document{})
	if result.Error != nil {
		return fmt.Errorf("deleting %s/%s: %w", c.name, key, result.Error)
	}

	if result.RowsAffected == 0 {
		return docstore.ErrNotFound
	}

	return nil
}
