// Package redisstore implements the document store on Redis. Each collection
// is a hash stored under "<prefix>:<collection>" with one field per document.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inventory-api/inventory-api/internal/docstore"
)

// DefaultPrefix namespaces the hashes when no prefix is configured.
const DefaultPrefix = "inventory"

const maxUpdateAttempts = 10

// ErrClientNil is returned when the driver is created without a client.
var ErrClientNil = errors.New("redis client is nil")

// ErrTooManyConflicts is returned when an update keeps losing optimistic lock races.
var ErrTooManyConflicts = errors.New("document kept changing during update")

// Driver is a docstore.Driver backed by Redis hashes.
type Driver struct {
	client         *redis.Client
	prefix         string
	connectTimeout time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithPrefix sets the key prefix for all collections.
func WithPrefix(prefix string) Option {
	return func(d *Driver) {
		if prefix != "" {
			d.prefix = prefix
		}
	}
}

// WithConnectTimeout bounds the PING issued by Connect.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.connectTimeout = timeout
	}
}

// New creates a driver on an existing client.
func New(client *redis.Client, opts ...Option) (*Driver, error) {
	if client == nil {
		return nil, ErrClientNil
	}

	d := &Driver{
		client:         client,
		prefix:         DefaultPrefix,
		connectTimeout: docstore.DefaultConnectTimeout,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Name implements docstore.Driver.
func (d *Driver) Name() string {
	return "redis"
}

// Connect pings the server and returns a connection handle.
func (d *Driver) Connect(ctx context.Context) (docstore.Conn, error) {
	pingCtx, cancel := docstore.ConnectContext(ctx, d.connectTimeout)
	defer cancel()

	if err := d.client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
	}

	return &conn{driver: d}, nil
}

type conn struct {
	driver *Driver
	closed atomic.Bool
}

func (c *conn) Collection(name string) docstore.Collection {
	return &collection{conn: c, hash: c.driver.prefix + ":" + name}
}

func (c *conn) Close() error {
	c.closed.Store(true)
	return nil
}

type collection struct {
	conn *conn
	hash string
}

func (c *collection) client() (*redis.Client, error) {
	if c.conn.closed.Load() {
		return nil, docstore.ErrClosed
	}

	return c.conn.driver.client, nil
}

func (c *collection) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, docstore.ErrEmptyKey
	}

	client, err := c.client()
	if err != nil {
		return nil, err
	}

	body, err := client.HGet(ctx, c.hash, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, docstore.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("hget %s %s: %w", c.hash, key, err)
	}

	return body, nil
}

func (c *collection) List(ctx context.Context) ([][]byte, error) {
	client, err := c.client()
	if err != nil {
		return nil, err
	}

	fields, err := client.HGetAll(ctx, c.hash).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", c.hash, err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		out = append(out, []byte(fields[k]))
	}

	return out, nil
}

func (c *collection) Insert(ctx context.Context, key string, body []byte) error {
	if key == "" {
		return docstore.ErrEmptyKey
	}

	client, err := c.client()
	if err != nil {
		return err
	}

	created, err := client.HSetNX(ctx, c.hash, key, body).Result()
	if err != nil {
		return fmt.Errorf("hsetnx %s %s: %w", c.hash, key, err)
	}

	if !created {
		return docstore.ErrDuplicateKey
	}

	return nil
}

// Update watches the hash so a concurrent writer aborts the transaction, then retries.
func (c *collection) Update(ctx context.Context, key string, fn docstore.UpdateFunc) ([]byte, error) {
	if key == "" {
		return nil, docstore.ErrEmptyKey
	}

	client, err := c.client()
	if err != nil {
		return nil, err
	}

	var next []byte

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, c.hash, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return docstore.ErrNotFound
		}

		if err != nil {
			return fmt.Errorf("hget %s %s: %w", c.hash, key, err)
		}

		next, err = fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, c.hash, key, next)
			return nil
		})

		return err //nolint:wrapcheck // redis.TxFailedErr must stay comparable
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err = client.Watch(ctx, txf, c.hash)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped inside txf
		}

		return next, nil
	}

	return nil, ErrTooManyConflicts
}

func (c *collection) Delete(ctx context.Context, key string) error {
	if key == "" {
		return docstore.ErrEmptyKey
	}

	client, err := c.client()
	if err != nil {
		return err
	}

	removed, err := client.HDel(ctx, c.hash, key).Result()
	if err != nil {
		return fmt.Errorf("hdel %s %s: %w", c.hash, key, err)
	}

	if removed == 0 {
		return docstore.ErrNotFound
	}

	return nil
}
