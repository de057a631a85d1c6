// Package migrations embeds the goose SQL migrations applied by the migrate
// command and by auto-migrate on startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
