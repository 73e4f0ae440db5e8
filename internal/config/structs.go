package config

import (
	"github.com/inventory-api/inventory-api/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	Auth      Auth
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown in seconds
	URL            string // base url for the webserver
	LoginRateLimit int    // login attempts per client IP and minute, 0 = default
}

// Auth holds token and role settings.
type Auth struct {
	JWTSecret           string   // HS256 signing secret, required
	TokenTTL            Duration // lifetime of issued tokens
	Issuer              string   // "iss" claim, empty = none
	LiveRolePermissions bool     // resolve role defaults from the role catalog instead of the static table
	AdminUsername       string   // user seeded on first start
	AdminPassword       string   // empty = random password logged once at first start
}
