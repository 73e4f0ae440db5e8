package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/inventory-api/inventory-api/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode (no graceful shutdown delay, stack traces on panics)")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the inventory-api web service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			d, err := daemon.New(cmd.Context(), &cfg)
			if err != nil {
				return err
			}

			log.Info().Int("port", cfg.Webserver.Port).Str("engine", cfg.DB.Engine).Msg("starting web service")

			return d.Start()
		},
	}
)
