package crm

import "embed"

//go:embed infrastructure/persistence/schema/crm-schema.sql
var migrationFiles embed.FS

// MigrationFiles returns the embedded schema for this module.
func MigrationFiles() *embed.FS {
	return &migrationFiles
}
