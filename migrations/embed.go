// Package migrations embeds the SQL schema applied at startup.
package migrations

import "embed"

// FS holds every *.up.sql file of the service.
//
//go:embed *.sql
var FS embed.FS
