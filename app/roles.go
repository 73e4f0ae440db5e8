package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inventory-api/inventory-api/internal/auth"
	"github.com/inventory-api/inventory-api/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rolesCmd.AddCommand(rolesInitCmd, rolesListCmd)
	rootCmd.AddCommand(rolesCmd)
}

var (
	rolesCmd = &cobra.Command{
		Use:   "roles",
		Short: "Manage the role catalog",
	}

	rolesInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create the built-in roles that are missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRoles(func(roles *auth.RoleDirectory) error {
				created, err := roles.InitializeDefaultRoles(cmd.Context())
				if err != nil {
					return err
				}

				cmd.Printf("created %d role(s)\n", created)

				return nil
			})
		},
	}

	rolesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the active roles and their permissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRoles(func(roles *auth.RoleDirectory) error {
				all, err := roles.GetAllRoles(cmd.Context())
				if err != nil {
					return err
				}

				for _, role := range all {
					cmd.Printf("%-8s %s\n", role.Name, strings.Join(auth.Strings(role.Permissions), ","))
				}

				return nil
			})
		},
	}
)

// withRoles opens the configured document store for the duration of fn.
func withRoles(fn func(roles *auth.RoleDirectory) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := daemon.OpenStore(&cfg)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}

	errRun := fn(auth.NewRoleDirectory(store.Driver))

	return errors.Join(errRun, store.Close())
}
