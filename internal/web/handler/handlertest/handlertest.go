// Package handlertest builds handler dependencies on an in-memory document
// store for the handler package tests.
package handlertest

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/config"
	"github.com/inventory-api/inventory-api/internal/docstore"
	"github.com/inventory-api/inventory-api/internal/docstore/docstoretest"
	"github.com/inventory-api/inventory-api/internal/web/handler"
	authmw "github.com/inventory-api/inventory-api/internal/web/middleware/auth"
)

const secret = "handler-test-secret"

// Env is a complete set of handler dependencies.
type Env struct {
	Deps   handler.Deps
	Codec  *auth.TokenCodec
	Users  *auth.LocalProvider
	Driver *docstore.Instrumented
}

// New creates an Env with the default roles initialised and a generous login rate limit.
func New(t *testing.T) *Env {
	t.Helper()

	driver := docstoretest.Memory(t)

	codec, err := auth.NewTokenCodec([]byte(secret))
	require.NoError(t, err)

	roles := auth.NewRoleDirectory(driver)
	_, err = roles.InitializeDefaultRoles(context.Background())
	require.NoError(t, err)

	users := auth.NewLocalProvider(driver)

	cfg := &config.Config{
		Webserver: config.Webserver{Port: 8080, URL: "http://localhost:8080", LoginRateLimit: 1000},
		Auth:      config.Auth{JWTSecret: secret, TokenTTL: config.Duration{Duration: time.Hour}},
	}

	return &Env{
		Deps: handler.Deps{
			Cfg:      cfg,
			Gate:     authmw.New(codec),
			Roles:    roles,
			Defaults: auth.StaticRoleDefaults{},
			Login:    auth.NewLoginService(users, codec, time.Hour),
			Alive:    func() bool { return true },
		},
		Codec:  codec,
		Users:  users,
		Driver: driver,
	}
}

// App creates a fiber app using the API error handler and initialises services on it.
func (e *Env) App(t *testing.T, services ...handler.Service) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	for _, s := range services {
		require.NoError(t, s.Init(app, e.Deps))
	}

	return app
}

// Token mints a bearer token for identity.
func (e *Env) Token(t *testing.T, identity auth.Identity) string {
	t.Helper()

	token, err := e.Codec.Mint(identity, time.Hour)
	require.NoError(t, err)

	return token
}

// Response is a fully read HTTP response.
type Response struct {
	Status int
	Body   []byte
}

// Do sends a request to app. A non-nil body is JSON encoded; a non-empty
// token is sent as bearer token.
func Do(t *testing.T, app *fiber.App, method, path string, body any, token string) Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return Response{Status: resp.StatusCode, Body: raw}
}

// Decode unmarshals the response body into v.
func (r Response) Decode(t *testing.T, v any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(r.Body, v), "body: %s", r.Body)
}

// Error decodes the uniform error payload.
func (r Response) Error(t *testing.T) auth.ErrorResponse {
	t.Helper()

	var payload auth.ErrorResponse
	r.Decode(t, &payload)

	return payload
}
