package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const codeUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsDuplicateConstraintError reports whether err is a unique_violation raised
// by the named constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraintName
}
