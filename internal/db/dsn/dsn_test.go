package dsn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventory-api/inventory-api/internal/config"
)

func cfgWith(db config.DB) *config.Config {
	return &config.Config{DB: db}
}

func TestCreate(t *testing.T) {
	cfg := cfgWith(config.DB{
		User: "inv", Password: "pw", Host: "db", Port: 3306, Name: "inventory", Extras: "parseTime=true",
	})

	assert.Equal(t, "inv:pw@tcp(db:3306)/inventory?parseTime=true", Create(cfg))
}

func TestPostgres(t *testing.T) {
	cfg := cfgWith(config.DB{
		User: "inv", Password: "pw", Host: "db", Port: 5432, Name: "inventory", Extras: "sslmode=disable",
	})

	assert.Equal(t, "host=db port=5432 user=inv password=pw dbname=inventory sslmode=disable", Postgres(cfg))
}

func TestSQLite(t *testing.T) {
	assert.Equal(t, ":memory:", SQLite(cfgWith(config.DB{})))
	assert.Equal(t, "/var/lib/inventory.db", SQLite(cfgWith(config.DB{Path: "/var/lib/inventory.db"})))
}

func TestDialector(t *testing.T) {
	testCases := []struct {
		engine  string
		name    string
		wantErr bool
	}{
		{engine: "", name: "sqlite"},
		{engine: config.EngineSQLite, name: "sqlite"},
		{engine: config.EngineMySQL, name: "mysql"},
		{engine: config.EnginePostgres, name: "postgres"},
		{engine: config.EngineRedis, wantErr: true},
		{engine: config.EngineBadger, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.engine, func(t *testing.T) {
			d, err := Dialector(cfgWith(config.DB{Engine: tc.engine}))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNotSQL)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.name, d.Name())
		})
	}
}

func TestRedis(t *testing.T) {
	opts := Redis(cfgWith(config.DB{
		Host: "cache", User: "inv", Password: "pw", ConnectTimeout: config.Duration{Duration: 2 * time.Second},
	}))

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "inv", opts.Username)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)

	assert.Equal(t, "cache:6380", Redis(cfgWith(config.DB{Host: "cache", Port: 6380})).Addr)
}
