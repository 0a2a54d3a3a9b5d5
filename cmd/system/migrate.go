package system

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarahsindone/sbrp-application/internal/repo/mongostore"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
	"github.com/sarahsindone/sbrp-application/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create store indexes and seed authorization policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = time.Minute
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if strings.EqualFold(cfg.Database.Driver, "memory") {
				fmt.Println("Memory driver selected; skipping store indexes.")
			} else {
				fmt.Println("Creating document store indexes.")
				mcfg := database.MongoFromCentralConfig(cfg.Database.Mongo)
				client, err := database.NewMongoClient(ctx, mcfg)
				if err != nil {
					return err
				}
				defer client.Disconnect(context.Background())

				if err := mongostore.EnsureIndexes(ctx, client.Database(mcfg.Name)); err != nil {
					return fmt.Errorf("failed to create indexes: %w", err)
				}
			}

			fmt.Println("Seeding Casbin policies.")
			acfg := authorize.FromCentralConfig(cfg.Authorization)
			enforcer, cleanup, err := authorize.NewEnforcer(acfg, database.NewDSN(cfg.CasbinDatabase))
			if err != nil {
				return fmt.Errorf("failed to create enforcer: %w", err)
			}
			defer cleanup(context.Background())

			auth, err := authorize.NewAuthorization(enforcer, acfg.AdminBypass)
			if err != nil {
				return fmt.Errorf("failed to create authorization: %w", err)
			}

			slog.Info("seeding casbin policies", "count", len(authorize.DefaultPolicies()))
			if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}
			// The file adapter only persists on an explicit save.
			if acfg.PolicyPath != "" {
				if err := auth.Raw().SavePolicy(); err != nil {
					return fmt.Errorf("failed to save policy file: %w", err)
				}
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
