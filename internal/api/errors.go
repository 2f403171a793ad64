package api

import (
	"errors"
	"net/http"

	"github.com/devluc/finance-api/internal/api/shared"
	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/service/auth"
	"github.com/devluc/finance-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes, so
// handlers never leak internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case auth.IsAuthenticationError(err):
		return http.StatusUnauthorized

	// Conflict errors, checked before the validation group because the
	// registered-email rejection is also a business-rule violation.
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, domain.ErrEmailRegistered):
		return http.StatusConflict

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrReleaseNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidID),
		domain.IsValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message exposed to clients for the
// given error. Business-rule and authentication messages are part of the
// service contract and pass through verbatim; everything else is replaced
// with a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	// Unknown email and wrong password intentionally read differently.
	case auth.IsAuthenticationError(err):
		return err.Error()

	case errors.Is(err, store.ErrUserNotFound):
		return "user not found"

	case errors.Is(err, store.ErrReleaseNotFound):
		return "release not found"

	case errors.Is(err, store.ErrEmailExists):
		return domain.ErrEmailRegistered.Error()

	case domain.IsValidationError(err), errors.Is(err, domain.ErrInvalidID):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and safe message and
// writes the response. fallbackMessage, when non-empty, overrides the
// mapped message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if fallbackMessage != "" && message == "An unexpected error occurred" {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
