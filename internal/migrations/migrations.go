// Package migrations содержит SQL-миграции схемы результатов.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
