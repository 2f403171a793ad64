package domain

import (
	"strings"
	"time"
)

// ReleaseType distinguishes income from expense entries.
type ReleaseType string

// Possible release type values. The set is closed; anything else is
// rejected at the boundary.
const (
	ReleaseTypeIncome  ReleaseType = "INCOME"
	ReleaseTypeExpense ReleaseType = "EXPENSE"
)

// ReleaseStatus represents the workflow state of a release.
type ReleaseStatus string

// Possible release status values. Transitions are not constrained: any
// status may be set to any other via an explicit update, but a newly
// created release always starts at PENDING.
const (
	ReleaseStatusPending  ReleaseStatus = "PENDING"
	ReleaseStatusSettled  ReleaseStatus = "SETTLED"
	ReleaseStatusCanceled ReleaseStatus = "CANCELED"
)

// ParseReleaseType converts a wire string into a ReleaseType.
// Matching is case-insensitive; unrecognized values fail closed.
func ParseReleaseType(s string) (ReleaseType, error) {
	switch ReleaseType(strings.ToUpper(strings.TrimSpace(s))) {
	case ReleaseTypeIncome:
		return ReleaseTypeIncome, nil
	case ReleaseTypeExpense:
		return ReleaseTypeExpense, nil
	default:
		return "", ErrInvalidReleaseType
	}
}

// ParseReleaseStatus converts a wire string into a ReleaseStatus.
// Matching is case-insensitive; unrecognized values fail closed.
func ParseReleaseStatus(s string) (ReleaseStatus, error) {
	switch ReleaseStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case ReleaseStatusPending:
		return ReleaseStatusPending, nil
	case ReleaseStatusSettled:
		return ReleaseStatusSettled, nil
	case ReleaseStatusCanceled:
		return ReleaseStatusCanceled, nil
	default:
		return "", ErrInvalidReleaseStatus
	}
}

// Release represents a single income or expense record owned by a user.
// The monetary value is kept in cents; decimal conversion happens only at
// the API boundary.
type Release struct {
	ID               int64         `json:"id"`
	Description      string        `json:"description"`
	Month            int           `json:"month"`
	Year             int           `json:"year"`
	AmountCents      int64         `json:"amount_cents"`
	OwnerID          int64         `json:"owner_id"`
	Type             ReleaseType   `json:"type"`
	Status           ReleaseStatus `json:"status"`
	RegistrationDate time.Time     `json:"registration_date"`
}

// Validate checks the release against the business rules, in a fixed
// order: description, month, year, owner, value, type. The first failing
// rule wins, so error messages are deterministic even when several rules
// are violated. The check is pure; owner existence is verified separately
// by the release service.
func (r *Release) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrInvalidDescription
	}

	if r.Month < 1 || r.Month > 12 {
		return ErrInvalidMonth
	}

	// The year must render as exactly four digits.
	if r.Year < 1000 || r.Year > 9999 {
		return ErrInvalidYear
	}

	if r.OwnerID == 0 {
		return ErrOwnerRequired
	}

	if r.AmountCents <= 0 {
		return ErrInvalidValue
	}

	if !isValidReleaseType(r.Type) {
		return ErrTypeRequired
	}

	return nil
}

// isValidReleaseType checks if the given type is a valid ReleaseType.
func isValidReleaseType(t ReleaseType) bool {
	switch t {
	case ReleaseTypeIncome, ReleaseTypeExpense:
		return true
	default:
		return false
	}
}

// IsValidReleaseStatus checks if the given status is a valid ReleaseStatus.
func IsValidReleaseStatus(s ReleaseStatus) bool {
	switch s {
	case ReleaseStatusPending, ReleaseStatusSettled, ReleaseStatusCanceled:
		return true
	default:
		return false
	}
}
