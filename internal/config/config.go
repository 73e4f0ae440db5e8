// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "INVENTORY_API_CONFIG_JSON"

const (
	defaultShutDownTime   = 5
	defaultTokenTTL       = time.Hour
	defaultLoginRateLimit = 10
	defaultAdminUsername  = "admin"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config override from env")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c Config) (string, error) {
	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err //nolint: wrapcheck
	}

	return string(out) + "\n", nil
}

// validate checks the settings the service cannot start without and fills
// in defaults for the optional ones.
func validate(c *Config) error {
	// validate webserver listening port
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Auth.JWTSecret == "" {
		return errors.Wrap(ErrEmptyJWTSecret, invalidErrMessage)
	}

	switch c.DB.Engine {
	case "":
		c.DB.Engine = EngineSQLite
	case EngineSQLite, EngineMySQL, EnginePostgres, EngineRedis, EngineBadger:
	default:
		return errors.Wrapf(ErrUnknownDBEngine, "%s: %q", invalidErrMessage, c.DB.Engine)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.LoginRateLimit == 0 {
		c.Webserver.LoginRateLimit = defaultLoginRateLimit
	}

	if c.Auth.TokenTTL.Duration <= 0 {
		c.Auth.TokenTTL.Duration = defaultTokenTTL
	}

	if c.Auth.AdminUsername == "" {
		c.Auth.AdminUsername = defaultAdminUsername
	}

	return nil
}
