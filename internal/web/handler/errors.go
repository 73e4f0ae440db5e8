package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/inventory-api/inventory-api/internal/auth"
)

const msgInternalServerError = "Internal server error"

// ErrNilDeps is returned by Init when app or a required dependency is nil.
var ErrNilDeps = errors.New(ErrNilDepsMsg)

// ErrorHandler is the fiber error handler of the API. It renders every error
// as auth.ErrorResponse, maps the auth sentinels to their status codes and
// hides the details of everything else behind a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, message := classify(err)

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}

	return auth.Reject(c, status, message)
}

func classify(err error) (int, string) {
	var (
		fiberErr *fiber.Error
		roleErr  *auth.RoleError
	)

	switch {
	case errors.As(err, &fiberErr):
		if fiberErr.Code >= fiber.StatusInternalServerError && fiberErr.Message == "" {
			return fiberErr.Code, msgInternalServerError
		}

		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &roleErr):
		return roleStatus(roleErr.Err), roleErr.Message
	case errors.Is(err, auth.ErrMissingCredentials):
		return fiber.StatusBadRequest, "Username and password are required"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrInvalidInput):
		return fiber.StatusBadRequest, "Invalid input"
	case errors.Is(err, auth.ErrInvalidRoleName),
		errors.Is(err, auth.ErrInvalidPermission),
		errors.Is(err, auth.ErrProtectedRole):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrRoleNotFound):
		return fiber.StatusNotFound, "Role not found"
	case errors.Is(err, auth.ErrRoleAlreadyExists):
		return fiber.StatusConflict, "Role already exists"
	default:
		return fiber.StatusInternalServerError, msgInternalServerError
	}
}

func roleStatus(sentinel error) int {
	switch {
	case errors.Is(sentinel, auth.ErrRoleNotFound):
		return fiber.StatusNotFound
	case errors.Is(sentinel, auth.ErrRoleAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(sentinel, auth.ErrInvalidRoleName),
		errors.Is(sentinel, auth.ErrInvalidPermission),
		errors.Is(sentinel, auth.ErrProtectedRole),
		errors.Is(sentinel, auth.ErrInvalidInput):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RoleNotFound builds the 404 error for a role lookup that found nothing.
func RoleNotFound(name string) error {
	return &auth.RoleError{Err: auth.ErrRoleNotFound, Message: "Role " + name + " not found"}
}
