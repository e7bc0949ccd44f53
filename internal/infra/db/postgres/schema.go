package postgres

import _ "embed"

// SchemaSQL is the full DDL. Every statement is idempotent, so applying
// it to a live database is safe.
//
//go:embed schema.sql
var SchemaSQL string
