// Package login provides the credential login endpoint of the API.
package login

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/web/handler"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.APIPrefix + "/auth/login"

	msgInvalidBody  = "Invalid request body"
	msgLoginFailure = "Internal server error during login"
	msgRateLimited  = "Too many login attempts, please try again later"

	rateLimitWindow = time.Minute
)

// Request is the login payload.
type Request struct {
	Username string `json:"username" validate:"max=128"`
	Password string `json:"password" validate:"max=1024"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	login     *auth.LoginService
	validator *validator.Validate
}

// Init registers the login route behind a per client IP rate limiter. The
// counters live in deps.Limiter when set, so every instance shares them.
func (s *Service) Init(app *fiber.App, deps handler.Deps) error {
	if app == nil || deps.Cfg == nil || deps.Login == nil {
		return handler.ErrNilDeps
	}

	s.login = deps.Login
	s.validator = validator.New()

	limit := limiter.New(limiter.Config{
		Max:        deps.Cfg.Webserver.LoginRateLimit,
		Expiration: rateLimitWindow,
		Storage:    deps.Limiter,
		LimitReached: func(c *fiber.Ctx) error {
			log.Warn().Str("ip", c.IP()).Msg("login rate limit reached")
			return auth.Reject(c, fiber.StatusTooManyRequests, msgRateLimited)
		},
	})

	app.Route(Path, func(router fiber.Router) {
		router.Post(handler.RouterRootPath, limit, s.Post)
	})

	return nil
}

// Post exchanges a username and password for a bearer token.
func (s *Service) Post(c *fiber.Ctx) error {
	req := new(Request)

	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := s.validator.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}

	result, err := s.login.Login(c.UserContext(), req.Username, req.Password)

	switch {
	case err == nil:
		return c.JSON(result)
	case errors.Is(err, auth.ErrMissingCredentials), errors.Is(err, auth.ErrInvalidCredentials):
		log.Info().Str("username", req.Username).Str("ip", c.IP()).Msg("login rejected")
		return err
	default:
		log.Error().Err(err).Str("username", req.Username).Msg("login failed")
		return fiber.NewError(fiber.StatusInternalServerError, msgLoginFailure)
	}
}
