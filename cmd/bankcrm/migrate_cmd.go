package main

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iota-uz/bankcrm/modules/audit"
	"github.com/iota-uz/bankcrm/modules/core"
	"github.com/iota-uz/bankcrm/modules/crm"
)

// Schema order matters: crm references core tables, audit stands alone.
func schemaSources() []*embed.FS {
	return []*embed.FS{
		core.MigrationFiles(),
		crm.MigrationFiles(),
		audit.MigrationFiles(),
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			for _, source := range schemaSources() {
				err := fs.WalkDir(source, ".", func(path string, d fs.DirEntry, err error) error {
					if err != nil {
						return err
					}
					if d.IsDir() || !strings.HasSuffix(path, ".sql") {
						return nil
					}
					ddl, err := fs.ReadFile(source, path)
					if err != nil {
						return err
					}
					if _, err := pool.Exec(cmd.Context(), string(ddl)); err != nil {
						return fmt.Errorf("apply %s: %w", path, err)
					}
					fmt.Printf("applied %s\n", path)
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}
