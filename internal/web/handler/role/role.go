// Package role exposes the role catalog over the JSON API.
package role

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/web/handler"
)

const (
	// Path is the base path of the role endpoints.
	Path = handler.APIPrefix + "/roles"

	// ParamName is the route parameter holding the role name.
	ParamName = "name"

	// ModeReplace replaces the stored permissions on PATCH.
	ModeReplace = "replace"
	// ModeMerge adds to the stored permissions on PATCH.
	ModeMerge = "merge"

	msgInvalidBody = "Invalid request body"
)

// CreateRequest is the POST payload.
type CreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Permissions []string `json:"permissions" validate:"required"`
}

// PatchRequest is the PATCH payload. Absent fields are left untouched.
type PatchRequest struct {
	Permissions []string `json:"permissions"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=replace merge"`
	IsActive    *bool    `json:"isActive"`
}

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	roles     *auth.RoleDirectory
	validator *validator.Validate
}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps handler.Deps) error {
	if app == nil || deps.Gate == nil || deps.Roles == nil || deps.Defaults == nil {
		return handler.ErrNilDeps
	}

	s.roles = deps.Roles
	s.validator = validator.New()

	requireAuth := deps.Gate.RequireAuth()
	canRead := auth.RequirePermission(deps.Defaults, auth.PermReadRoles)
	canWrite := auth.RequirePermission(deps.Defaults, auth.PermWriteRoles)
	canDelete := auth.RequirePermission(deps.Defaults, auth.PermDeleteRoles)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, requireAuth, canRead, s.List)
		router.Post(handler.RouterRootPath, requireAuth, canWrite, s.Create)
		router.Get("/:"+ParamName, requireAuth, canRead, s.Get)
		router.Patch("/:"+ParamName, requireAuth, canWrite, s.Update)
		router.Delete("/:"+ParamName, requireAuth, auth.RequireRole(auth.RoleAdmin), canDelete, s.Delete)
	})

	return nil
}

// List returns every active role.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := s.roles.GetAllRoles(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(roles)
}

// Get returns one active role.
func (s *Service) Get(c *fiber.Ctx) error {
	name := c.Params(ParamName)

	role, err := s.roles.GetRoleByName(c.UserContext(), name)
	if err != nil {
		return err
	}

	if role == nil {
		return handler.RoleNotFound(name)
	}

	return c.JSON(role)
}

// Create stores a new role.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(CreateRequest)

	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := s.validator.Struct(req); err != nil {
		log.Debug().Err(err).Msg("role create payload rejected")
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}

	role, err := s.roles.CreateRole(c.UserContext(), auth.RoleInput{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(role)
}

// Update patches the permissions or the active flag of a role.
func (s *Service) Update(c *fiber.Ctx) error {
	req := new(PatchRequest)

	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}

	if err := s.validator.Struct(req); err != nil {
		log.Debug().Err(err).Msg("role patch payload rejected")
		return fiber.NewError(fiber.StatusBadRequest, msgInvalidBody)
	}

	patch := auth.RolePatch{
		Permissions: req.Permissions,
		IsActive:    req.IsActive,
	}

	if req.Mode == ModeMerge {
		patch.Mode = auth.PatchMerge
	}

	role, err := s.roles.UpdateRole(c.UserContext(), c.Params(ParamName), patch)
	if err != nil {
		return err
	}

	return c.JSON(role)
}

// Delete soft deletes a role, or removes it for good with ?purge=true.
func (s *Service) Delete(c *fiber.Ctx) error {
	name := c.Params(ParamName)

	var err error
	if c.QueryBool("purge") {
		err = s.roles.PurgeRole(c.UserContext(), name)
	} else {
		err = s.roles.DeleteRole(c.UserContext(), name)
	}

	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
