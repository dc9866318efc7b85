// Package migrations embeds the SQL schema files so deployment tooling and
// integration tests run the same DDL the code was written against.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
