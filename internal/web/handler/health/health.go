// Package health provides the liveness endpoint used by load balancers.
package health

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inventory-api/inventory-api/internal/web/handler"
)

// Path is the liveness path. The access log skips it when Log.DisableCheckAlive is set.
const Path = "/checkalive"

// Service is the health handler service.
type Service struct {
	handler.Service
	alive func() bool
}

// Init registers the route.
func (s *Service) Init(app *fiber.App, deps handler.Deps) error {
	if app == nil || deps.Alive == nil {
		return handler.ErrNilDeps
	}

	s.alive = deps.Alive

	app.Get(Path, s.Get)

	return nil
}

// Get answers 200 while the service accepts traffic and 503 once shutdown started.
func (s *Service) Get(c *fiber.Ctx) error {
	if !s.alive() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}
