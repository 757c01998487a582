// Package postgres implements the simplecms repositories on PostgreSQL
// using pgx. All SQL uses positional parameter binding; values are never
// interpolated into query text.
package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the database interface used by the repositories. It is satisfied
// by *pgxpool.Pool and by pgxmock pools in tests.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier is the subset of DBTX shared with pgx.Tx, so row scans work the
// same inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// rowExists reports whether a row with the given id exists. table comes
// from the fixed set of repository tables, never from request input.
func rowExists(ctx context.Context, q querier, table string, id uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
