// Package web wires the fiber application: middleware, the API handlers and
// the graceful shutdown sequence.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/config"
	fiberlog "github.com/inventory-api/inventory-api/internal/logger/adapter/fiber"
	"github.com/inventory-api/inventory-api/internal/web/handler"
	"github.com/inventory-api/inventory-api/internal/web/handler/health"
	"github.com/inventory-api/inventory-api/internal/web/handler/login"
	"github.com/inventory-api/inventory-api/internal/web/handler/me"
	"github.com/inventory-api/inventory-api/internal/web/handler/role"
	authmw "github.com/inventory-api/inventory-api/internal/web/middleware/auth"
)

// MetricsPath serves the Prometheus metrics.
const MetricsPath = "/metrics"

// ErrNilCore is returned by New when a core service is missing.
var ErrNilCore = errors.New("config, token codec, role directory, role defaults and login service are required")

// Core are the authentication services the HTTP layer is built on.
type Core struct {
	Codec    *auth.TokenCodec
	Roles    *auth.RoleDirectory
	Defaults auth.RoleDefaultsSource
	Login    *auth.LoginService
	// Limiter is the optional shared storage of the login rate limiter.
	Limiter fiber.Storage
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// Alive reports whether the service still accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown fails the liveness check, waits Webserver.ShutDownTime seconds so
// load balancers drop this instance, then stops the http server.
func (s *Service) Shutdown() {
	s.alive.Store(false)

	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every route.
func New(cfg *config.Config, core Core) (*Service, error) {
	if cfg == nil || core.Codec == nil || core.Roles == nil || core.Defaults == nil || core.Login == nil {
		return nil, ErrNilCore
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
			JSONEncoder:    json.Marshal,
			JSONDecoder:    json.Unmarshal,
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlog.New(fiberlog.Config{
		Config:            cfg.Log,
		CacheControlError: fiberlog.ConfigDefault.CacheControlError,
		CheckAliveURI:     health.Path,
		Fields: func(c *fiber.Ctx, e *zerolog.Event) {
			if identity, ok := auth.IdentityFromContext(c); ok {
				e.Str("user_id", identity.ID)
			}
		},
	}))

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	deps := handler.Deps{
		Cfg:      cfg,
		Gate:     authmw.New(core.Codec),
		Roles:    core.Roles,
		Defaults: core.Defaults,
		Login:    core.Login,
		Limiter:  core.Limiter,
		Alive:    service.Alive,
	}

	services := []handler.Service{
		&health.Service{},
		&login.Service{},
		&me.Service{},
		&role.Service{},
	}

	for _, s := range services {
		if err := s.Init(app, deps); err != nil {
			return nil, err
		}
	}

	return service, nil
}
