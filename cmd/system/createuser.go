package system

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/sarahsindone/sbrp-application/config"
	"github.com/sarahsindone/sbrp-application/internal/app"
	"github.com/sarahsindone/sbrp-application/internal/repo"
	"github.com/sarahsindone/sbrp-application/internal/service/auth"
	"github.com/sarahsindone/sbrp-application/pkg/authorize"
	"github.com/sarahsindone/sbrp-application/pkg/util/password"
)

func NewCreateUserCommand() *cobra.Command {
	var (
		req      auth.CreateUserRequest
		generate bool
	)

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login and grant its role",
		Example: `  sbrp system create-user --email admin@firm.example --first-name Ada --last-name Lovelace --role admin --generate-password
  SBRP_NEW_USER_PASSWORD=... sbrp system create-user --email jo@firm.example --first-name Jo --last-name Smith`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			switch {
			case generate:
				req.Password = password.Generate(20)
			case req.Password == "":
				req.Password = os.Getenv("SBRP_NEW_USER_PASSWORD")
			}
			if req.Password == "" {
				return fmt.Errorf("password required: pass --generate-password or set SBRP_NEW_USER_PASSWORD")
			}

			var (
				svc   auth.Service
				authz authorize.IAuthorization
			)
			fxApp := fx.New(
				fx.Supply(cfg),
				fx.Provide(app.ProvideStore, app.ProvideAuthorization, app.ProvidePasswordHasher),
				fx.Provide(newUserAdminService),
				fx.Populate(&svc, &authz),
				fx.NopLogger,
			)
			ctx := context.Background()
			if err := fxApp.Start(ctx); err != nil {
				return err
			}
			defer fxApp.Stop(ctx)

			u, err := svc.CreateUser(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			if cfg.Authorization.PolicyPath != "" {
				if err := authz.Raw().SavePolicy(); err != nil {
					return fmt.Errorf("failed to save policy file: %w", err)
				}
			}

			fmt.Printf("Created %s user %s (%s)\n", u.Role, u.Email, u.ID)
			if generate {
				fmt.Printf("Generated password: %s\n", req.Password)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Email, "email", "", "login e-mail")
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Role, "role", "practitioner", "admin|practitioner")
	f.BoolVar(&generate, "generate-password", false, "generate and print a random password")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// newUserAdminService builds an auth service that can only create users;
// no tokens or sessions are issued from the CLI.
func newUserAdminService(store *repo.Store, hasher *password.Hasher, authz authorize.IAuthorization, cfg *config.Config) auth.Service {
	return auth.New(store, auth.NewMemorySessions(), nil, hasher,
		auth.WithAuthorizer(authz),
		auth.WithMinPasswordLength(cfg.Authentication.MinPasswordLength),
	)
}
