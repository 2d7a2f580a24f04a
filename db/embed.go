// Package db provides embedded database schema and seed files.
package db

import _ "embed"

// PostgresSchema contains the DDL statements for the PostgreSQL driver.
//
//go:embed migrations/postgres/001_schema.sql
var PostgresSchema string

// SQLiteSchema contains the DDL statements for the SQLite driver.
//
//go:embed migrations/sqlite/001_schema.sql
var SQLiteSchema string
