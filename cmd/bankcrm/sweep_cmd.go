package main

import (
	"fmt"

	"github.com/spf13/cobra"

	auditpersistence "github.com/iota-uz/bankcrm/modules/audit/infrastructure/persistence"
	auditservices "github.com/iota-uz/bankcrm/modules/audit/services"
	crmpersistence "github.com/iota-uz/bankcrm/modules/crm/infrastructure/persistence"
	crmservices "github.com/iota-uz/bankcrm/modules/crm/services"
	"github.com/iota-uz/bankcrm/pkg/composables"
	"github.com/iota-uz/bankcrm/pkg/configuration"
	"github.com/iota-uz/bankcrm/pkg/eventbus"
)

// sweep-overdue runs a single overdue pass, for deployments that schedule
// it externally instead of using the in-process cron.
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Flip past-due open tasks to overdue once",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := configuration.Use()

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx := composables.WithPool(cmd.Context(), pool)

			audit := auditservices.NewAuditService(auditpersistence.NewAuditLogRepository(), conf.Audit.Enabled)
			tasks := crmservices.NewTaskService(
				crmpersistence.NewTaskRepository(),
				nil,
				audit,
				eventbus.NewEventPublisher(conf.Logger()),
			)

			flipped, err := tasks.RunOverdueSweep(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("marked %d tasks overdue\n", flipped)
			return nil
		},
	}
}
