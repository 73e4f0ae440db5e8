// Package dsn builds database connection settings from the configuration.
package dsn

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inventory-api/inventory-api/internal/config"
)

const (
	sqliteMemory = ":memory:"

	defaultRedisPort = 6379
)

// ErrNotSQL is returned by Dialector for engines that are not served by gorm.
var ErrNotSQL = errors.New("db engine is not a SQL engine")

// Create builds the MySQL Data Source Name from the configuration.
func Create(dbCfg *config.Config) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.DB.User,
		dbCfg.DB.Password,
		dbCfg.DB.Host,
		dbCfg.DB.Port,
		dbCfg.DB.Name,
		dbCfg.DB.Extras,
	)

	return out
}

// Postgres builds the key/value PostgreSQL DSN. Extras are appended verbatim,
// e.g. "sslmode=disable TimeZone=UTC".
func Postgres(dbCfg *config.Config) string {
	parts := []string{
		"host=" + dbCfg.DB.Host,
		"port=" + strconv.Itoa(dbCfg.DB.Port),
		"user=" + dbCfg.DB.User,
		"password=" + dbCfg.DB.Password,
		"dbname=" + dbCfg.DB.Name,
	}

	if dbCfg.DB.Extras != "" {
		parts = append(parts, dbCfg.DB.Extras)
	}

	return strings.Join(parts, " ")
}

// SQLite returns the SQLite database file. An empty path is an in-memory database.
func SQLite(dbCfg *config.Config) string {
	if dbCfg.DB.Path == "" {
		return sqliteMemory
	}

	return dbCfg.DB.Path
}

// Dialector returns the gorm dialector of the configured SQL engine.
func Dialector(dbCfg *config.Config) (gorm.Dialector, error) {
	switch dbCfg.DB.Engine {
	case config.EngineSQLite, "":
		return sqlite.Open(SQLite(dbCfg)), nil
	case config.EngineMySQL:
		return mysql.Open(Create(dbCfg)), nil
	case config.EnginePostgres:
		return postgres.Open(Postgres(dbCfg)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotSQL, dbCfg.DB.Engine)
	}
}

// Redis returns the client options of the redis engine. DB.Name is not part
// of the options; it is the key prefix of the document store.
func Redis(dbCfg *config.Config) *redis.Options {
	port := dbCfg.DB.Port
	if port == 0 {
		port = defaultRedisPort
	}

	return &redis.Options{
		Addr:        net.JoinHostPort(dbCfg.DB.Host, strconv.Itoa(port)),
		Username:    dbCfg.DB.User,
		Password:    dbCfg.DB.Password,
		DialTimeout: dbCfg.DB.ConnectTimeout.Duration,
	}
}
