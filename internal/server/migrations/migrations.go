// Package migrations embeds the goose schema migrations for each supported
// database dialect.
package migrations

import "embed"

// Postgres holds the migrations applied with the pgx driver.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// MySQL holds the migrations applied with the mysql driver.
//
//go:embed mysql/*.sql
var MySQL embed.FS
