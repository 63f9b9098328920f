// Package migrations embeds the SQL migration files so they can be applied
// by the goose Provider API from tests and plannerctl.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
