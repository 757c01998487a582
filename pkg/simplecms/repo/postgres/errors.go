package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hokuto/simple-cms/pkg/simplecms"
)

// handlePostgresError translates driver errors into domain errors. notFound
// is the sentinel to return when the query matched no rows.
func handlePostgresError(err error, op string, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w: %s", op, simplecms.ErrDuplicateKey, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w: %s", op, simplecms.ErrForeignKeyViolation, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("%s: column %s must not be null", op, pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist (run migrations): %w", op, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
