package migrations

import "embed"

//go:embed *.sql
var migrationFiles embed.FS

// MigrationsTable is the bookkeeping table golang-migrate writes to.
const MigrationsTable = "schema_migrations_repairdesk"
