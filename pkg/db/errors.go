package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique
// constraint violation. When constraintName is provided, a message
// referencing that constraint also counts; the generic Postgres and
// SQLite phrasings are recognized either way.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
