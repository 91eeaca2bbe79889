package migrations

import "embed"

// FS contains embedded SQLite migrations for todo storage.
//
//go:embed *.sql
var FS embed.FS
