// Package migrations embeds the goose SQL migrations for the catalog schema.
package migrations

import "embed"

// FS holds every *.sql migration file.
//
//go:embed *.sql
var FS embed.FS
