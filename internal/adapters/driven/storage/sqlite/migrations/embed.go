// Package migrations holds the schema for the SQLite chunk store. Files are
// applied in name order and each one runs once.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
