package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when client-supplied input fails a field-level
	// check. Its message is safe to surface to the caller verbatim.
	ErrValidation = errors.New("validation error")

	// ErrDataNotFound is returned when a referenced entity does not exist.
	// The message names the identifying key.
	ErrDataNotFound = errors.New("data not found")

	// ErrDatabaseConnection is returned when the persistence layer fails to
	// connect or a statement fails for infrastructure reasons. Callers only
	// ever see this generic sentinel; the driver detail is logged, not surfaced.
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrAuthentication is returned on credential mismatch or a malformed
	// password hash. Messages stay generic so they never reveal which
	// credential was wrong.
	ErrAuthentication = errors.New("authentication failed")
)

// Validationf builds an ErrValidation with a caller-facing message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an ErrDataNotFound with a caller-facing message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataNotFound, fmt.Sprintf(format, args...))
}

// Authenticationf builds an ErrAuthentication with a caller-facing message.
func Authenticationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthentication, fmt.Sprintf(format, args...))
}
