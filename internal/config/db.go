package config

// Supported DB engines.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineRedis    = "redis"
	EngineBadger   = "badger"
)

// DB holds the document store backend settings.
type DB struct {
	Engine         string // sqlite, mysql, postgres, redis or badger
	Extras         string
	Host           string
	Port           int
	User           string
	Password       string
	Name           string   // database name; for redis the key prefix
	Path           string   // sqlite file or badger directory, empty = in memory
	ConnectTimeout Duration // bound for each connection acquisition
}
