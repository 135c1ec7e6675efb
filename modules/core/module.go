package core

import "embed"

//go:embed infrastructure/persistence/schema/core-schema.sql
var migrationFiles embed.FS

// MigrationFiles returns the embedded schema for this module.
func MigrationFiles() *embed.FS {
	return &migrationFiles
}
