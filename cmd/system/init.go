package system

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarahsindone/sbrp-application/pkg/database"
)

func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the Casbin policy database",
		Long: `Create the Postgres database that stores authorization policies.

Nothing is done when authorization.policy_path selects a policy file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Authorization.PolicyPath != "" {
				fmt.Println("Policies are file based; no database to initialize.")
				return nil
			}

			fmt.Println("Initializing databases...")
			if err := database.InitializeDatabase(context.Background(), database.FromCentralConfig(cfg.CasbinDatabase)); err != nil {
				return fmt.Errorf("failed to initialize databases: %w", err)
			}
			fmt.Println("Databases initialized successfully.")
			return nil
		},
	}

	return cmd
}
