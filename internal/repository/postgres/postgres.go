// Package postgres provides PostgreSQL-backed implementations of the
// repository interfaces. Repositories take database.DBTX so tests can swap in
// a pgxmock pool.
package postgres

import "strings"

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
