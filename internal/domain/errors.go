// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is the base error for every business-rule violation.
	// Specific rule errors are checked individually; IsValidationError
	// recognizes all of them.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// Release validation errors, in the order the rules are evaluated.
// The messages are part of the service contract and are matched verbatim
// by callers and tests.
var (
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidYear        = errors.New("invalid year")
	ErrOwnerRequired      = errors.New("owner required")
	ErrInvalidValue       = errors.New("invalid value")
	ErrTypeRequired       = errors.New("entry type required")
)

// User validation errors.
var (
	ErrEmailRegistered  = errors.New("email already registered")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword    = errors.New("password cannot be empty")
)

// Enum parsing errors. Unrecognized values are rejected at the boundary,
// never silently defaulted.
var (
	ErrInvalidReleaseType   = errors.New("invalid release type")
	ErrInvalidReleaseStatus = errors.New("invalid release status")
)

// validationErrors enumerates every error that represents a user-input
// defect rather than an infrastructure failure.
var validationErrors = []error{
	ErrValidation,
	ErrInvalidDescription,
	ErrInvalidMonth,
	ErrInvalidYear,
	ErrOwnerRequired,
	ErrInvalidValue,
	ErrTypeRequired,
	ErrEmailRegistered,
	ErrEmptyName,
	ErrEmptyEmail,
	ErrInvalidEmail,
	ErrPasswordTooShort,
	ErrPasswordTooLong,
	ErrEmptyPassword,
	ErrInvalidReleaseType,
	ErrInvalidReleaseStatus,
}

// IsValidationError reports whether err is any kind of business-rule
// violation. Callers use it to distinguish recoverable input defects from
// infrastructure failures.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
