package health

import (
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/inventory-api/inventory-api/internal/web/handler/handlertest"
)

func TestCheckAlive(t *testing.T) {
	var alive atomic.Bool
	alive.Store(true)

	env := handlertest.New(t)
	env.Deps.Alive = alive.Load
	app := env.App(t, &Service{})

	resp := handlertest.Do(t, app, fiber.MethodGet, Path, nil, "")
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Equal(t, "OK", string(resp.Body))

	alive.Store(false)

	resp = handlertest.Do(t, app, fiber.MethodGet, Path, nil, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.Status)
}
