package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/assetdesk/internal/apperr"
)

// Querier is the subset of *sql.DB, *sql.Tx and *sql.Conn used by the
// single-statement store functions, so they can run inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueViolation reports whether err is a SQLite UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

// refs runs query and collects (id, name) rows as conflict references.
func refs(ctx context.Context, q Querier, table, query string, args ...any) ([]apperr.Ref, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s references: %w", table, err)
	}
	defer rows.Close()

	var out []apperr.Ref
	for rows.Next() {
		var r apperr.Ref
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scanning %s reference: %w", table, err)
		}
		r.Table = table
		out = append(out, r)
	}
	return out, rows.Err()
}

// inUse returns a ConflictError when any row references the record being
// deleted, or nil when the record is free.
func inUse(ctx context.Context, q Querier, message, table, query string, args ...any) error {
	found, err := refs(ctx, q, table, query, args...)
	if err != nil {
		return err
	}
	if len(found) > 0 {
		return &apperr.ConflictError{Message: message, Conflicts: found}
	}
	return nil
}
