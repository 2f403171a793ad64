package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devluc/finance-api/internal/api/shared"
	"github.com/devluc/finance-api/internal/domain"
)

// getUserIDFromContext extracts the authenticated user's ID from the
// request context, placed there by the auth middleware.
func getUserIDFromContext(r *http.Request) (int64, bool) {
	return shared.UserIDFromContext(r.Context())
}

// getPathID extracts a positive integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}

	return id, nil
}

// requireAuthAndPathID extracts both the authenticated user ID and an ID
// path parameter, writing an error response when either is missing.
// A false return means the response has already been written.
func requireAuthAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (userID, pathID int64, ok bool) {
	userID, found := getUserIDFromContext(r)
	if !found {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return 0, 0, false
	}

	pathID, err := getPathID(r, paramName)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}

	return userID, pathID, true
}

// queryInt parses an optional integer query parameter, falling back to
// def when the parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
