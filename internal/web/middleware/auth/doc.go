// Package auth provides the authentication gate of the HTTP API.
//
// The gate reads the "Authorization: Bearer <token>" header, verifies the
// token and attaches the resulting identity to fiber.Locals, where the
// authorization middleware of the internal/auth package picks it up.
//
// Two variants are provided:
//   - RequireAuth rejects requests without a usable token
//   - OptionalAuth proceeds anonymously instead
//
// Usage:
//
//	gate := authmiddleware.New(codec)
//	api := app.Group("/api", gate.RequireAuth())
package auth
