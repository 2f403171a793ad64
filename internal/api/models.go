package api

import (
	"time"

	"github.com/devluc/finance-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the authentication endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication
// endpoints: the identity projection plus an access token.
type AuthResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`

	// AccessToken is the JWT used for API authorization.
	AccessToken string `json:"token"`
}

// ReleaseRequest defines the payload for creating or updating a release.
// Value is a decimal string; Type and Status are parsed fail-closed.
type ReleaseRequest struct {
	Description string `json:"description" validate:"required,min=1"`
	Month       int    `json:"month"       validate:"required"`
	Year        int    `json:"year"        validate:"required"`
	Value       string `json:"value"       validate:"required"`
	OwnerID     int64  `json:"owner_id"    validate:"required"`
	Type        string `json:"type"        validate:"required"`
}

// UpdateStatusRequest defines the payload for the status-only update.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ReleaseResponse represents a release on the wire. The amount is
// rendered as a decimal string with two fraction digits.
type ReleaseResponse struct {
	ID               int64     `json:"id"`
	Description      string    `json:"description"`
	Month            int       `json:"month"`
	Year             int       `json:"year"`
	Value            string    `json:"value"`
	OwnerID          int64     `json:"owner_id"`
	Type             string    `json:"type"`
	Status           string    `json:"status"`
	RegistrationDate time.Time `json:"registration_date"`
}

// ReleasePageResponse is one page of releases plus the owner's total count.
type ReleasePageResponse struct {
	Items []ReleaseResponse `json:"items"`
	Total int64             `json:"total"`
}

// AmountResponse carries a single monetary figure, used by the balance
// and extract endpoints.
type AmountResponse struct {
	Amount string `json:"amount"`
}

// releaseToResponse converts a domain.Release to its wire representation.
func releaseToResponse(release *domain.Release) ReleaseResponse {
	return ReleaseResponse{
		ID:               release.ID,
		Description:      release.Description,
		Month:            release.Month,
		Year:             release.Year,
		Value:            domain.FormatAmountCents(release.AmountCents),
		OwnerID:          release.OwnerID,
		Type:             string(release.Type),
		Status:           string(release.Status),
		RegistrationDate: release.RegistrationDate,
	}
}

// releasesToResponse converts a slice of releases, never returning nil so
// empty results serialize as [].
func releasesToResponse(releases []*domain.Release) []ReleaseResponse {
	out := make([]ReleaseResponse, 0, len(releases))
	for _, release := range releases {
		out = append(out, releaseToResponse(release))
	}
	return out
}
