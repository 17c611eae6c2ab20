package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when a user insert violates the unique
// email constraint.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrDuplicateApplication is returned when an application insert violates
// the unique (vacancy, applicant) constraint.
var ErrDuplicateApplication = errors.New("application already exists")

const (
	emailUniqueConstraint       = "users_email_key"
	applicationUniqueConstraint = "applications_vacancy_applicant_key"
)

// isUniqueViolation reports whether err is a postgres unique_violation on
// the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && string(pqErr.Constraint) == constraint
}
