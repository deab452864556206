// Package db holds the SQL migrations, embedded into the binary.
//
// Migrations live in one directory per dialect (postgres, sqlite3) and
// follow golang-migrate naming: <version>_<name>.up.sql / .down.sql.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
