package database

import "embed"

// Migrations holds the schema, applied with Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS
