package services

import "errors"

// ErrInvalidInput is returned when required fields are missing or malformed,
// including oversized or non-PDF résumé uploads.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidCredentials is returned on login when the email is unknown or
// the password does not match. The two cases are deliberately
// indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrVacancyClosed is returned when submitting an application against a
// vacancy that is not in the active state.
var ErrVacancyClosed = errors.New("vacancy is no longer active")

// ErrCorruptCredential is returned when a stored password digest cannot be
// parsed. A plain mismatch is not an error.
var ErrCorruptCredential = errors.New("corrupt password digest")
