package gormstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/inventory-api/inventory-api/internal/docstore"
	"github.com/inventory-api/inventory-api/internal/docstore/docstoretest"
	"github.com/inventory-api/inventory-api/internal/docstore/gormstore"
)

func TestNew(t *testing.T) {
	_, err := gormstore.New(nil)
	assert.ErrorIs(t, err, gormstore.ErrDBNil)
}

func TestDriverSuite(t *testing.T) {
	docstoretest.RunDriverSuite(t, docstoretest.SQLiteDriver(t))
}

func TestName(t *testing.T) {
	d := docstoretest.SQLiteDriver(t)
	assert.Equal(t, "gorm-sqlite", d.Name())
}

func TestConnectClosedDatabase(t *testing.T) {
	db := docstoretest.SQLiteDB(t)

	d, err := gormstore.New(db)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = d.Connect(context.Background())
	assert.ErrorIs(t, err, docstore.ErrUnavailable)
}

func TestInsertLosingUniqueIndexRace(t *testing.T) {
	db := docstoretest.SQLiteDB(t)

	d, err := gormstore.New(db)
	require.NoError(t, err)
	require.NoError(t, d.Migrate())

	var once sync.Once

	// another writer commits the same key between the existence check and the insert
	err = db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		once.Do(func() {
			require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).
				Exec("INSERT INTO documents (collection, doc_key, body) VALUES (?, ?, ?)", "roles", "viewer", []byte(`{}`)).Error)
		})
	})
	require.NoError(t, err)

	ctx := context.Background()

	conn, err := d.Connect(ctx)
	require.NoError(t, err)

	defer conn.Close()

	err = conn.Collection("roles").Insert(ctx, "viewer", []byte(`{"name":"viewer"}`))
	assert.ErrorIs(t, err, docstore.ErrDuplicateKey)
}
