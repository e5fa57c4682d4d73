package database

import (
	"context"
	"database/sql"
	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables and indexes when missing. Safe to run on every boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return wrapDBError("ensure schema", err)
	}
	return nil
}

// Schema exposes the DDL, mainly for tests and ops tooling.
func Schema() string {
	return schemaSQL
}
