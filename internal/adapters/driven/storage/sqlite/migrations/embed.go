// Package migrations holds the metadata schema as numbered SQL files,
// NNN_name.up.sql and a matching .down.sql, applied in numeric order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
