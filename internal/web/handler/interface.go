package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/config"
	authmw "github.com/inventory-api/inventory-api/internal/web/middleware/auth"
)

// Deps are the collaborators a handler service may need. The web service
// builds them once and hands the same value to every handler.
type Deps struct {
	Cfg      *config.Config
	Gate     *authmw.Gate
	Roles    *auth.RoleDirectory
	Defaults auth.RoleDefaultsSource
	Login    *auth.LoginService
	Limiter  fiber.Storage // nil keeps rate limiter counters in memory
	Alive    func() bool
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps Deps) error
}
