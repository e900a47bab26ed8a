package repositories

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// Postgres error classes used by the retryable-error predicate in services.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// IsForeignKeyViolation reports whether err is a postgres foreign key
// violation. Registration retries on this class (the profile insert can race
// the identity row's visibility).
func IsForeignKeyViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == pqForeignKeyViolation
	}
	return false
}

// IsUndefinedRelation reports whether err is the postgres undefined-table
// class, which shows up when the schema cache behind a pooled connection is
// stale right after a migration.
func IsUndefinedRelation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "42P01"
	}
	return false
}
