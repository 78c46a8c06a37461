// Package migrations embeds the SQLite schema migrations in golang-migrate
// file naming: <version>_<name>.up.sql and <version>_<name>.down.sql.
package migrations

import "embed"

// FS holds the migration files.
//
//go:embed *.sql
var FS embed.FS
