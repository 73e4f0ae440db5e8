package daemon

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		DevMode:   true,
		Title:     "inventory-api-test",
		Webserver: config.Webserver{Port: 8080, URL: "http://localhost:8080", LoginRateLimit: 100},
		Auth: config.Auth{
			JWTSecret:     "daemon-test-secret",
			TokenTTL:      config.Duration{Duration: time.Hour},
			AdminUsername: "admin",
			AdminPassword: "first-boot",
		},
		DB: config.DB{Engine: config.EngineSQLite},
	}
}

func login(t *testing.T, d *Daemon, username, password string) int {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := d.Web().App.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	return resp.StatusCode
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNewOnEveryEngine(t *testing.T) {
	testCases := []struct {
		name      string
		configure func(t *testing.T, cfg *config.Config)
	}{
		{
			name:      "sqlite in memory",
			configure: func(*testing.T, *config.Config) {},
		},
		{
			name: "badger in memory",
			configure: func(_ *testing.T, cfg *config.Config) {
				cfg.DB.Engine = config.EngineBadger
			},
		},
		{
			name: "redis",
			configure: func(t *testing.T, cfg *config.Config) {
				mr := miniredis.RunT(t)

				host, port, err := net.SplitHostPort(mr.Addr())
				require.NoError(t, err)

				cfg.DB.Engine = config.EngineRedis
				cfg.DB.Host = host
				cfg.DB.Port, err = strconv.Atoi(port)
				require.NoError(t, err)
				cfg.DB.Name = "daemon-test"
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.configure(t, cfg)

			d, err := New(context.Background(), cfg)
			require.NoError(t, err)

			t.Cleanup(func() {
				assert.NoError(t, d.Close())
			})

			roles, err := auth.NewRoleDirectory(d.store.Driver).GetAllRoles(context.Background())
			require.NoError(t, err)
			assert.Len(t, roles, len(auth.ValidRoles))

			assert.Equal(t, fiber.StatusOK, login(t, d, "admin", "first-boot"))
			assert.Equal(t, fiber.StatusUnauthorized, login(t, d, "admin", "guess"))
		})
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	cfg := baseConfig()

	store, err := OpenStore(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	users := auth.NewLocalProvider(store.Driver)
	ctx := context.Background()

	require.NoError(t, seed(ctx, cfg, users))

	cfg.Auth.AdminPassword = "changed"
	require.NoError(t, seed(ctx, cfg, users))

	count, err := users.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = users.VerifyCredentials(ctx, "admin", "first-boot")
	assert.NoError(t, err)
}

func TestSeedGeneratesPassword(t *testing.T) {
	cfg := baseConfig()
	cfg.Auth.AdminPassword = ""

	store, err := OpenStore(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	users := auth.NewLocalProvider(store.Driver)
	require.NoError(t, seed(context.Background(), cfg, users))

	user, err := users.GetUser(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, string(auth.RoleAdmin), user.Role)
	assert.True(t, user.Active)
}

func TestOpenStoreSQLiteFile(t *testing.T) {
	cfg := baseConfig()
	cfg.DB.Engine = config.EngineSQLite
	cfg.DB.Path = t.TempDir() + "/inventory.db"

	store, err := OpenStore(cfg)
	require.NoError(t, err)

	assert.Equal(t, "gorm-sqlite", store.Driver.Name())
	assert.NoError(t, store.Close())
}

func TestLimiterStorageStaysInMemoryWithoutSQLServer(t *testing.T) {
	for _, engine := range []string{config.EngineSQLite, config.EngineRedis, config.EngineBadger} {
		cfg := baseConfig()
		cfg.DB.Engine = engine

		assert.Nil(t, openLimiterStorage(cfg), engine)
	}

	cfg := baseConfig()
	cfg.DB.Path = t.TempDir() + "/inventory.db"

	store, err := OpenStore(cfg)
	require.NoError(t, err)

	assert.Nil(t, store.Limiter)
	assert.NoError(t, store.Close())
}

func TestNewLogsRoleInitializationOnce(t *testing.T) {
	var buf bytes.Buffer

	previous := log.Logger
	log.Logger = zerolog.New(&buf)

	t.Cleanup(func() { log.Logger = previous })

	d, err := New(context.Background(), baseConfig())
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, d.Close())
	})

	assert.Equal(t, 1, strings.Count(buf.String(), "default roles initialized"))
}
