// Package migrations provides the embedded SQL migration files.
// They are applied by db.Migrate, from the server's migrate subcommand and
// from testutil in integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
