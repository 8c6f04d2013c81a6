// Package migrations embeds the chunk store's SQL migration files.
package migrations

import "embed"

// FS holds the versioned up/down migration scripts, embedded at compile
// time so the binary carries its own schema.
//
//go:embed *.sql
var FS embed.FS
