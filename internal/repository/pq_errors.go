package repository

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgLockNotAvailable    = "55P03"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// ConstraintName returns the violated constraint, if err carries one.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// IsUniqueViolation reports a duplicate key error.
func IsUniqueViolation(err error) bool {
	return pqCode(err) == pgUniqueViolation
}

// IsForeignKeyViolation reports a row still referenced, or a reference to a
// row that no longer exists.
func IsForeignKeyViolation(err error) bool {
	return pqCode(err) == pgForeignKeyViolation
}

// IsCheckViolation reports a failed CHECK constraint such as the seating
// ceiling on buses.
func IsCheckViolation(err error) bool {
	return pqCode(err) == pgCheckViolation
}

// IsLockTimeout reports that a row lock could not be taken within the
// session lock_timeout.
func IsLockTimeout(err error) bool {
	return pqCode(err) == pgLockNotAvailable
}
