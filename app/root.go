// Package app implements the main application commands.
package app

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inventory-api/inventory-api/internal/config"
	"github.com/inventory-api/inventory-api/internal/logger"
)

const (
	envPrefix = "INVENTORY_API"

	keyConfig = "config"
)

var rootCmd = &cobra.Command{
	Use:   "inventory-api",
	Short: "inventory-api serves the inventory API with token authentication and role based access",
	Long: `inventory-api serves the inventory API. Clients log in with a username and
password, receive a bearer token and are authorized per request by role and
permission. Roles are kept in a document store (SQLite, MySQL, PostgreSQL,
Redis or Badger).`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().String(keyConfig, "./etc/",
		"directory holding main.toml (env "+envPrefix+"_CONFIG)")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlag(keyConfig, rootCmd.PersistentFlags().Lookup(keyConfig)); err != nil {
		panic(err)
	}
}

// configPath returns the config directory from the flag or the environment,
// always with a trailing slash.
func configPath() string {
	path := viper.GetString(keyConfig)
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return path
}

// loadConfig reads the configuration and initialises the logger from it.
func loadConfig() (config.Config, error) {
	cfg, err := config.ReadConfig(configPath())
	if err != nil {
		return cfg, err
	}

	if err = logger.Init(cfg.Log); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
