// Package migrations embeds the SQL schema files applied by cmd/migrate.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
