// Package repository holds the Postgres-backed stores for each REST resource.
// Missing rows surface as sql.ErrNoRows.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// execAffectingOne runs a statement that must touch exactly one row.
func execAffectingOne(ctx context.Context, db *sql.DB, query string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// isUUID guards id lookups; Postgres rejects malformed uuids with a syntax
// error rather than an empty result.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
