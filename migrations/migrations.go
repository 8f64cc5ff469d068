// Package migrations embeds the goose SQL migrations so each binary
// can apply them on startup without shipping files alongside it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
