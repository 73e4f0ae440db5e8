// Package docstoretest provides in-process document store backends and a
// shared behaviour suite for tests.
package docstoretest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inventory-api/inventory-api/internal/docstore"
	"github.com/inventory-api/inventory-api/internal/docstore/badgerstore"
	"github.com/inventory-api/inventory-api/internal/docstore/gormstore"
)

// SQLiteDB opens a private in-memory SQLite database.
func SQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)

	// every pooled connection would otherwise see its own empty database
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// SQLiteDriver returns a migrated gorm driver on an in-memory SQLite database.
func SQLiteDriver(t *testing.T) *gormstore.Driver {
	t.Helper()

	d, err := gormstore.New(SQLiteDB(t))
	require.NoError(t, err)
	require.NoError(t, d.Migrate(), "failed to migrate test database")

	return d
}

// Redis starts a miniredis server and returns a client connected to it.
func Redis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return mr, client
}

// BadgerDriver returns a driver on an in-memory Badger database.
func BadgerDriver(t *testing.T) *badgerstore.Driver {
	t.Helper()

	db, err := badgerstore.Open("")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	d, err := badgerstore.New(db)
	require.NoError(t, err)

	return d
}

// Memory returns an instrumented SQLite backed driver, the default for
// tests that only need some working store.
func Memory(t *testing.T) *docstore.Instrumented {
	t.Helper()

	return docstore.Instrument(SQLiteDriver(t))
}

// RunDriverSuite checks the behaviour every docstore.Driver must provide.
func RunDriverSuite(t *testing.T, d docstore.Driver) {
	t.Helper()

	ctx := context.Background()

	open := func(t *testing.T, collection string) docstore.Collection {
		t.Helper()

		conn, err := d.Connect(ctx)
		require.NoError(t, err)

		t.Cleanup(func() {
			_ = conn.Close()
		})

		return conn.Collection(collection)
	}

	t.Run("get missing", func(t *testing.T) {
		c := open(t, "suite_get")

		_, err := c.Get(ctx, "absent")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("insert then get", func(t *testing.T) {
		c := open(t, "suite_insert")

		require.NoError(t, c.Insert(ctx, "a", []byte(`{"v":1}`)))

		got, err := c.Get(ctx, "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(got))

		err = c.Insert(ctx, "a", []byte(`{"v":2}`))
		assert.ErrorIs(t, err, docstore.ErrDuplicateKey)

		got, err = c.Get(ctx, "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":1}`, string(got))
	})

	t.Run("empty key", func(t *testing.T) {
		c := open(t, "suite_empty")

		assert.ErrorIs(t, c.Insert(ctx, "", []byte(`{}`)), docstore.ErrEmptyKey)

		_, err := c.Get(ctx, "")
		assert.ErrorIs(t, err, docstore.ErrEmptyKey)
		assert.ErrorIs(t, c.Delete(ctx, ""), docstore.ErrEmptyKey)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		left := open(t, "suite_left")
		right := open(t, "suite_right")

		require.NoError(t, left.Insert(ctx, "k", []byte(`{"side":"left"}`)))

		_, err := right.Get(ctx, "k")
		assert.ErrorIs(t, err, docstore.ErrNotFound)

		require.NoError(t, right.Insert(ctx, "k", []byte(`{"side":"right"}`)))
	})

	t.Run("list is ordered by key", func(t *testing.T) {
		c := open(t, "suite_list")

		docs, err := c.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, docs)

		for _, k := range []string{"c", "a", "b"} {
			require.NoError(t, c.Insert(ctx, k, []byte(fmt.Sprintf(`{"k":%q}`, k))))
		}

		docs, err = c.List(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.JSONEq(t, `{"k":"a"}`, string(docs[0]))
		assert.JSONEq(t, `{"k":"b"}`, string(docs[1]))
		assert.JSONEq(t, `{"k":"c"}`, string(docs[2]))
	})

	t.Run("update", func(t *testing.T) {
		c := open(t, "suite_update")

		_, err := c.Update(ctx, "missing", func(current []byte) ([]byte, error) {
			return current, nil
		})
		assert.ErrorIs(t, err, docstore.ErrNotFound)

		require.NoError(t, c.Insert(ctx, "u", []byte(`{"n":1}`)))

		next, err := c.Update(ctx, "u", func(_ []byte) ([]byte, error) {
			return []byte(`{"n":2}`), nil
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":2}`, string(next))

		abort := errors.New("abort")
		_, err = c.Update(ctx, "u", func(_ []byte) ([]byte, error) {
			return nil, abort
		})
		assert.ErrorIs(t, err, abort)

		got, err := c.Get(ctx, "u")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":2}`, string(got))
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		c := open(t, "suite_counter")

		type counter struct {
			N int `json:"n"`
		}

		require.NoError(t, docstore.InsertJSON(ctx, c, "counter", counter{}))

		const workers = 8

		var wg sync.WaitGroup

		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := docstore.UpdateJSON(ctx, c, "counter", func(v *counter) error {
					v.N++
					return nil
				})
				errs <- err
			}()
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		got, err := docstore.GetJSON[counter](ctx, c, "counter")
		require.NoError(t, err)
		assert.Equal(t, workers, got.N)
	})

	t.Run("delete", func(t *testing.T) {
		c := open(t, "suite_delete")

		assert.ErrorIs(t, c.Delete(ctx, "absent"), docstore.ErrNotFound)

		require.NoError(t, c.Insert(ctx, "d", []byte(`{}`)))
		require.NoError(t, c.Delete(ctx, "d"))

		_, err := c.Get(ctx, "d")
		assert.ErrorIs(t, err, docstore.ErrNotFound)

		require.NoError(t, c.Insert(ctx, "d", []byte(`{"again":true}`)), "deleted keys can be reused")
	})

	t.Run("closed connection", func(t *testing.T) {
		conn, err := d.Connect(ctx)
		require.NoError(t, err)

		c := conn.Collection("suite_closed")
		require.NoError(t, conn.Close())
		require.NoError(t, conn.Close(), "closing twice is a no-op")

		_, err = c.Get(ctx, "x")
		assert.ErrorIs(t, err, docstore.ErrClosed)
	})
}
