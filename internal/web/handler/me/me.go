// Package me returns the identity of the calling user.
package me

import (
	"github.com/gofiber/fiber/v2"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/web/handler"
)

const (
	// Path is the path of the endpoint.
	Path = handler.APIPrefix + "/auth/me"

	// StatusPath reports whether the caller is authenticated, without requiring it.
	StatusPath = handler.APIPrefix + "/auth/status"
)

// Response is the identity of the caller together with its resolved permissions.
type Response struct {
	Identity             auth.Identity     `json:"identity"`
	EffectivePermissions []auth.Permission `json:"effectivePermissions"`
}

// StatusResponse is the opportunistic view of the caller. Identity is omitted
// for anonymous callers and for invalid tokens.
type StatusResponse struct {
	Authenticated bool           `json:"authenticated"`
	Identity      *auth.Identity `json:"identity,omitempty"`
}

// Service is the me handler service.
type Service struct {
	handler.Service
	defaults auth.RoleDefaultsSource
}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, deps handler.Deps) error {
	if app == nil || deps.Gate == nil || deps.Defaults == nil {
		return handler.ErrNilDeps
	}

	s.defaults = deps.Defaults

	app.Get(Path, deps.Gate.RequireAuth(), s.Get)
	app.Get(StatusPath, deps.Gate.OptionalAuth(), s.Status)

	return nil
}

// Get returns the caller and its effective permissions.
func (s *Service) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}

	defaults, err := s.defaults.RoleDefaults(c.UserContext(), identity.Role)
	if err != nil {
		return err
	}

	return c.JSON(Response{
		Identity:             identity,
		EffectivePermissions: auth.EffectivePermissions(identity, defaults).Slice(),
	})
}

// Status answers 200 for every caller and tells whether a valid token was sent.
func (s *Service) Status(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return c.JSON(StatusResponse{})
	}

	return c.JSON(StatusResponse{Authenticated: true, Identity: &identity})
}
