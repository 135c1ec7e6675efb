package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iota-uz/bankcrm/modules/core/domain/aggregates/user"
	"github.com/iota-uz/bankcrm/modules/core/domain/entities/orgunit"
	corepersistence "github.com/iota-uz/bankcrm/modules/core/infrastructure/persistence"
	"github.com/iota-uz/bankcrm/pkg/composables"
)

// seed creates the root division and an executive admin so a fresh
// deployment has someone able to log in and build out the hierarchy.
func newSeedCmd() *cobra.Command {
	var (
		email    string
		password string
		unitName string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the root org unit and an executive admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return fmt.Errorf("--password is required")
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx := composables.WithPool(cmd.Context(), pool)

			unitRepo := corepersistence.NewOrgUnitRepository()
			userRepo := corepersistence.NewUserRepository()

			root, err := unitRepo.Create(ctx, orgunit.New(unitName, orgunit.KindDivision, "HQ", 0))
			if err != nil {
				return fmt.Errorf("create root unit: %w", err)
			}

			admin := user.New(email, "admin", "System", "Administrator", user.LevelExecutive, user.RoleAdmin, root.ID())
			admin, err = admin.SetPassword(password)
			if err != nil {
				return err
			}
			created, err := userRepo.Create(ctx, admin)
			if err != nil {
				return fmt.Errorf("create admin user: %w", err)
			}

			fmt.Printf("seeded unit %d and admin user %d (%s)\n", root.ID(), created.ID(), created.Email())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "admin@bankcrm.local", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&unitName, "unit", "Head Office", "root org unit name")
	return cmd
}
