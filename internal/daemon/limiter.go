package daemon

import (
	"github.com/gofiber/fiber/v2"
	mysqlstorage "github.com/gofiber/storage/mysql/v2"
	pgstorage "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/config"
	"github.com/inventory-api/inventory-api/internal/db/dsn"
)

// LimiterTable holds the login rate limiter counters on the SQL server engines.
const LimiterTable = "login_limiter"

// openLimiterStorage returns the shared counter storage of the login rate
// limiter. Engines without a network database keep the counters in process
// memory, signalled by a nil storage.
func openLimiterStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.Engine {
	case config.EngineMySQL:
		log.Info().Str("table", LimiterTable).Msg("login rate limiter stored in mysql")

		return mysqlstorage.New(mysqlstorage.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         LimiterTable,
		})
	case config.EnginePostgres:
		log.Info().Str("table", LimiterTable).Msg("login rate limiter stored in postgres")

		return pgstorage.New(pgstorage.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         LimiterTable,
		})
	default:
		return nil
	}
}
