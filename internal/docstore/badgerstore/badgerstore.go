// Package badgerstore implements the document store on an embedded BadgerDB.
// Documents are stored under "<collection>/<key>".
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/inventory-api/inventory-api/internal/docstore"
	"github.com/inventory-api/inventory-api/internal/logger/adapter/stdlogger"
)

const (
	keySeparator = "/"

	maxTxnAttempts = 10
)

// ErrDBNil is returned when the driver is created without a database.
var ErrDBNil = errors.New("badger database is nil")

// Driver is a docstore.Driver backed by BadgerDB.
type Driver struct {
	db *badger.DB
}

// Open opens (or creates) a Badger database at path. An empty path opens an
// in-memory database.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(stdlogger.New(stdlogger.WithComponent("badger"))).
		WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", path, err)
	}

	return db, nil
}

// New creates a driver on an opened database. The caller owns db.
func New(db *badger.DB) (*Driver, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Driver{db: db}, nil
}

// Name implements docstore.Driver.
func (d *Driver) Name() string {
	return "badger"
}

// Connect returns a connection handle. It fails once the database is closed.
func (d *Driver) Connect(_ context.Context) (docstore.Conn, error) {
	if d.db.IsClosed() {
		return nil, fmt.Errorf("%w: badger database is closed", docstore.ErrUnavailable)
	}

	return &conn{db: d.db}, nil
}

type conn struct {
	db     *badger.DB
	closed atomic.Bool
}

func (c *conn) Collection(name string) docstore.Collection {
	return &collection{conn: c, prefix: name + keySeparator}
}

func (c *conn) Close() error {
	c.closed.Store(true)
	return nil
}

type collection struct {
	conn   *conn
	prefix string
}

func (c *collection) db() (*badger.DB, error) {
	if c.conn.closed.Load() {
		return nil, docstore.ErrClosed
	}

	return c.conn.db, nil
}

func (c *collection) key(key string) []byte {
	return []byte(c.prefix + key)
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error

	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}

	return err
}

func (c *collection) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, docstore.ErrEmptyKey
	}

	db, err := c.db()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context errors are returned as is
	}

	var body []byte

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return docstore.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("get %s%s: %w", c.prefix, key, err)
		}

		body, err = item.ValueCopy(nil)

		return err //nolint:wrapcheck // badger value errors are self describing
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped inside the transaction
	}

	return body, nil
}

func (c *collection) List(ctx context.Context) ([][]byte, error) {
	db, err := c.db()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context errors are returned as is
	}

	out := make([][]byte, 0)

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(c.prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			body, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("reading %s: %w", it.Item().Key(), err)
			}

			out = append(out, body)
		}

		return nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped inside the transaction
	}

	return out, nil
}

func (c *collection) Insert(ctx context.Context, key string, body []byte) error {
	if key == "" {
		return docstore.ErrEmptyKey
	}

	db, err := c.db()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context errors are returned as is
	}

	return update(db, func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(key))
		if err == nil {
			return docstore.ErrDuplicateKey
		}

		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get %s%s: %w", c.prefix, key, err)
		}

		if err := txn.Set(c.key(key), body); err != nil {
			return fmt.Errorf("set %s%s: %w", c.prefix, key, err)
		}

		return nil
	})
}

func (c *collection) Update(ctx context.Context, key string, fn docstore.UpdateFunc) ([]byte, error) {
	if key == "" {
		return nil, docstore.ErrEmptyKey
	}

	db, err := c.db()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context errors are returned as is
	}

	var next []byte

	err = update(db, func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return docstore.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("get %s%s: %w", c.prefix, key, err)
		}

		current, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("reading %s%s: %w", c.prefix, key, err)
		}

		next, err = fn(current)
		if err != nil {
			return err
		}

		if err := txn.Set(c.key(key), next); err != nil {
			return fmt.Errorf("set %s%s: %w", c.prefix, key, err)
		}

		return nil
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped inside the transaction
	}

	return next, nil
}

func (c *collection) Delete(ctx context.Context, key string) error {
	if key == "" {
		return docstore.ErrEmptyKey
	}

	db, err := c.db()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context errors are returned as is
	}

	return update(db, func(txn *badger.Txn) error {
		_, err := txn.Get(c.key(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return docstore.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("get %s%s: %w", c.prefix, key, err)
		}

		if err := txn.Delete(c.key(key)); err != nil {
			return fmt.Errorf("delete %s%s: %w", c.prefix, key, err)
		}

		return nil
	})
}
