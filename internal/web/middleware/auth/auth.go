package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	appauth "github.com/inventory-api/inventory-api/internal/auth"
)

const (
	bearerPrefix = "Bearer "

	msgMissingHeader = "Missing or invalid Authorization header. Please provide a valid Bearer token."

	msgServiceError = "Authentication service error"
)

// Gate extracts bearer tokens, verifies them and attaches the identity to the request.
type Gate struct {
	verifier appauth.Verifier
}

// New creates an authentication gate using verifier.
func New(verifier appauth.Verifier) *Gate {
	if verifier == nil {
		panic("verifier cannot be nil")
	}

	return &Gate{verifier: verifier}
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}

	return token, true
}

// RequireAuth rejects requests without a valid bearer token.
//
// A missing or malformed header is a 401. A token that fails verification is
// reported as 500 "Authentication service error", whatever the cause.
func (g *Gate) RequireAuth() fiber.Handler {
	const gate = "require_auth"

	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			appauth.ObserveGateDecision(gate, appauth.OutcomeRejected)
			log.Warn().Str("path", c.Path()).Str("ip", c.IP()).Msg("missing or malformed Authorization header")

			return appauth.Reject(c, fiber.StatusUnauthorized, msgMissingHeader)
		}

		identity, err := g.verifier.Verify(token)
		if err != nil {
			appauth.ObserveGateDecision(gate, appauth.OutcomeError)
			log.Warn().Err(err).Str("path", c.Path()).Str("ip", c.IP()).Msg("token verification failed")

			return appauth.Reject(c, fiber.StatusInternalServerError, msgServiceError)
		}

		appauth.ObserveGateDecision(gate, appauth.OutcomeAllowed)
		log.Debug().Str("user_id", identity.ID).Str("path", c.Path()).Msg("request authenticated")

		appauth.SetIdentity(c, identity)

		return c.Next()
	}
}

// OptionalAuth attaches an identity when the request carries a valid token and
// otherwise continues anonymously. It never writes a response.
func (g *Gate) OptionalAuth() fiber.Handler {
	const gate = "optional_auth"

	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			appauth.ObserveGateDecision(gate, appauth.OutcomeRejected)
			return c.Next()
		}

		identity, err := g.verifier.Verify(token)
		if err != nil {
			appauth.ObserveGateDecision(gate, appauth.OutcomeRejected)
			log.Debug().Err(err).Str("path", c.Path()).Msg("ignoring invalid token on optional route")

			return c.Next()
		}

		appauth.ObserveGateDecision(gate, appauth.OutcomeAllowed)
		appauth.SetIdentity(c, identity)

		return c.Next()
	}
}
