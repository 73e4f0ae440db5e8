package web

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/config"
	"github.com/inventory-api/inventory-api/internal/docstore/docstoretest"
	"github.com/inventory-api/inventory-api/internal/web/handler/me"
)

func newService(t *testing.T) *Service {
	t.Helper()

	ctx := context.Background()
	driver := docstoretest.Memory(t)

	codec, err := auth.NewTokenCodec([]byte("web-test-secret"))
	require.NoError(t, err)

	roles := auth.NewRoleDirectory(driver)
	_, err = roles.InitializeDefaultRoles(ctx)
	require.NoError(t, err)

	users := auth.NewLocalProvider(driver)
	_, err = users.CreateUser(ctx, auth.NewUser{Username: "admin", Password: "hunter2", Role: string(auth.RoleAdmin)})
	require.NoError(t, err)

	cfg := &config.Config{
		Title:     "inventory-api-test",
		DevMode:   true,
		Webserver: config.Webserver{Port: 8080, URL: "http://localhost:8080", LoginRateLimit: 100},
		Auth:      config.Auth{JWTSecret: "web-test-secret", TokenTTL: config.Duration{Duration: time.Hour}},
	}

	svc, err := New(cfg, Core{
		Codec:    codec,
		Roles:    roles,
		Defaults: roles,
		Login:    auth.NewLoginService(users, codec, time.Hour),
	})
	require.NoError(t, err)

	return svc
}

func send(t *testing.T, app *fiber.App, method, path, body, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
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

	return resp.StatusCode, raw
}

func TestNewRejectsMissingCore(t *testing.T) {
	_, err := New(&config.Config{}, Core{})
	assert.ErrorIs(t, err, ErrNilCore)
}

func TestLoginThenMe(t *testing.T) {
	svc := newService(t)

	status, body := send(t, svc.App, fiber.MethodPost, "/api/auth/login", `{"username":"admin","password":"hunter2"}`, "")
	require.Equal(t, fiber.StatusOK, status, string(body))

	var result auth.LoginResult
	require.NoError(t, json.Unmarshal(body, &result))

	status, body = send(t, svc.App, fiber.MethodGet, "/api/auth/me", "", result.Token)
	require.Equal(t, fiber.StatusOK, status, string(body))

	var who me.Response
	require.NoError(t, json.Unmarshal(body, &who))

	assert.Equal(t, "admin", who.Identity.Username)
	assert.ElementsMatch(t, auth.AllPermissions(), who.EffectivePermissions)

	status, _ = send(t, svc.App, fiber.MethodGet, "/api/roles", "", result.Token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestUnknownRouteUsesErrorPayload(t *testing.T) {
	svc := newService(t)

	status, body := send(t, svc.App, fiber.MethodGet, "/api/devices", "", "")
	require.Equal(t, fiber.StatusNotFound, status)

	var payload auth.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, "Not Found", payload.Error)
	assert.Equal(t, "Cannot GET /api/devices", payload.Message)
}

func TestCheckAliveFollowsShutdownState(t *testing.T) {
	svc := newService(t)

	status, _ := send(t, svc.App, fiber.MethodGet, "/checkalive", "", "")
	assert.Equal(t, fiber.StatusOK, status)

	svc.alive.Store(false)

	status, _ = send(t, svc.App, fiber.MethodGet, "/checkalive", "", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestMetricsEndpoint(t *testing.T) {
	svc := newService(t)

	// produce at least one gate decision
	send(t, svc.App, fiber.MethodGet, "/api/auth/me", "", "")

	status, body := send(t, svc.App, fiber.MethodGet, MetricsPath, "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "auth_gate_decisions_total")
}
