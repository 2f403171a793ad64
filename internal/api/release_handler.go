package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/devluc/finance-api/internal/api/shared"
	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/service"
	"github.com/devluc/finance-api/internal/store"
)

// Pagination defaults for the paginated listing.
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ReleaseHandler handles release-related HTTP requests.
type ReleaseHandler struct {
	releaseService *service.ReleaseService
	userService    *service.UserService
	validator      *validator.Validate
}

// NewReleaseHandler creates a new ReleaseHandler.
func NewReleaseHandler(
	releaseService *service.ReleaseService,
	userService *service.UserService,
) *ReleaseHandler {
	return &ReleaseHandler{
		releaseService: releaseService,
		userService:    userService,
		validator:      validator.New(),
	}
}

// Create handles POST /api/releases requests.
func (h *ReleaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	release, ok := h.decodeRelease(w, r)
	if !ok {
		return
	}

	created, err := h.releaseService.Create(r.Context(), release)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to create release")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, releaseToResponse(created))
}

// Update handles PUT /api/releases/{id} requests. The status and
// registration date of the stored release are preserved.
func (h *ReleaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, id, ok := requireAuthAndPathID(w, r, "id")
	if !ok {
		return
	}

	existing, found, err := h.releaseService.GetByID(r.Context(), id)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to update release")
		return
	}
	if !found {
		HandleAPIError(w, r, store.ErrReleaseNotFound, "")
		return
	}

	release, ok := h.decodeRelease(w, r)
	if !ok {
		return
	}
	release.ID = existing.ID
	release.Status = existing.Status
	release.RegistrationDate = existing.RegistrationDate

	updated, err := h.releaseService.Update(r.Context(), release)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to update release")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, releaseToResponse(updated))
}

// UpdateStatus handles PATCH /api/releases/{id}/status requests. The
// status string is parsed fail-closed and the release is re-validated.
func (h *ReleaseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	_, id, ok := requireAuthAndPathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	status, err := domain.ParseReleaseStatus(req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	existing, found, err := h.releaseService.GetByID(r.Context(), id)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to update release status")
		return
	}
	if !found {
		HandleAPIError(w, r, store.ErrReleaseNotFound, "")
		return
	}

	updated, err := h.releaseService.UpdateStatus(r.Context(), existing, status)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to update release status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, releaseToResponse(updated))
}

// Delete handles DELETE /api/releases/{id} requests.
func (h *ReleaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, id, ok := requireAuthAndPathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.releaseService.Delete(r.Context(), &domain.Release{ID: id}); err != nil {
		h.respondReleaseError(w, r, err, "Failed to delete release")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetByID handles GET /api/releases/{id} requests.
func (h *ReleaseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	_, id, ok := requireAuthAndPathID(w, r, "id")
	if !ok {
		return
	}

	release, found, err := h.releaseService.GetByID(r.Context(), id)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to get release")
		return
	}
	if !found {
		HandleAPIError(w, r, store.ErrReleaseNotFound, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, releaseToResponse(release))
}

// Search handles GET /api/releases requests. Every query parameter is an
// optional filter; absent parameters do not constrain the result.
func (h *ReleaseHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserIDFromContext(r); !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	releases, err := h.releaseService.Search(r.Context(), filter)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to search releases")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, releasesToResponse(releases))
}

// LastReleases handles GET /api/releases/last/{userId} requests.
func (h *ReleaseHandler) LastReleases(w http.ResponseWriter, r *http.Request) {
	_, ownerID, ok := requireAuthAndPathID(w, r, "userId")
	if !ok {
		return
	}

	releases, err := h.releaseService.LastReleases(r.Context(), ownerID)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to list recent releases")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, releasesToResponse(releases))
}

// Paginated handles GET /api/releases/paginated/{userId} requests. An
// unknown owner yields an empty page, not an error.
func (h *ReleaseHandler) Paginated(w http.ResponseWriter, r *http.Request) {
	_, ownerID, ok := requireAuthAndPathID(w, r, "userId")
	if !ok {
		return
	}

	page := queryInt(r, "page", 0)
	if page < 0 {
		page = 0
	}
	size := queryInt(r, "size", defaultPageSize)
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}

	result, err := h.releaseService.PageByOwner(r.Context(), ownerID, page, size)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to page releases")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReleasePageResponse{
		Items: releasesToResponse(result.Items),
		Total: result.Total,
	})
}

// Balance handles GET /api/users/{id}/balance requests.
func (h *ReleaseHandler) Balance(w http.ResponseWriter, r *http.Request) {
	_, ownerID, ok := requireAuthAndPathID(w, r, "id")
	if !ok {
		return
	}
	if !h.requireUser(w, r, ownerID) {
		return
	}

	balance, err := h.releaseService.BalanceByOwner(r.Context(), ownerID)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to compute balance")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AmountResponse{
		Amount: domain.FormatAmountCents(balance),
	})
}

// Extract handles GET /api/users/{id}/extract?type= requests.
func (h *ReleaseHandler) Extract(w http.ResponseWriter, r *http.Request) {
	_, ownerID, ok := requireAuthAndPathID(w, r, "id")
	if !ok {
		return
	}
	if !h.requireUser(w, r, ownerID) {
		return
	}

	releaseType, err := domain.ParseReleaseType(r.URL.Query().Get("type"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	total, err := h.releaseService.ExtractByType(r.Context(), ownerID, releaseType)
	if err != nil {
		h.respondReleaseError(w, r, err, "Failed to compute extract")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AmountResponse{
		Amount: domain.FormatAmountCents(total),
	})
}

// decodeRelease parses and converts the request body into a domain
// release. A false return means the error response was already written.
func (h *ReleaseHandler) decodeRelease(w http.ResponseWriter, r *http.Request) (*domain.Release, bool) {
	var req ReleaseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return nil, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return nil, false
	}

	cents, err := domain.ParseAmountCents(req.Value)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	releaseType, err := domain.ParseReleaseType(req.Type)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	return &domain.Release{
		Description: req.Description,
		Month:       req.Month,
		Year:        req.Year,
		AmountCents: cents,
		OwnerID:     req.OwnerID,
		Type:        releaseType,
	}, true
}

// requireUser writes a 404 and returns false when the user does not exist.
func (h *ReleaseHandler) requireUser(w http.ResponseWriter, r *http.Request, userID int64) bool {
	_, found, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("failed to look up user", "error", err, "user_id", userID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to look up user")
		return false
	}
	if !found {
		HandleAPIError(w, r, store.ErrUserNotFound, "")
		return false
	}
	return true
}

// respondReleaseError writes the mapped response for a release operation
// failure, logging unexpected errors.
func (h *ReleaseHandler) respondReleaseError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if !domain.IsValidationError(err) &&
		!errors.Is(err, store.ErrReleaseNotFound) &&
		!errors.Is(err, store.ErrUserNotFound) {
		slog.Error("release operation failed", "error", err)
	}
	HandleAPIError(w, r, err, fallback)
}

// filterFromQuery builds a release filter from the request query string.
func filterFromQuery(r *http.Request) (store.ReleaseFilter, error) {
	var filter store.ReleaseFilter
	q := r.URL.Query()

	if v := q.Get("description"); v != "" {
		filter.Description = &v
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return store.ReleaseFilter{}, domain.ErrInvalidMonth
		}
		filter.Month = &month
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return store.ReleaseFilter{}, domain.ErrInvalidYear
		}
		filter.Year = &year
	}
	if v := q.Get("owner"); v != "" {
		owner, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return store.ReleaseFilter{}, domain.ErrOwnerRequired
		}
		filter.OwnerID = &owner
	}
	if v := q.Get("type"); v != "" {
		releaseType, err := domain.ParseReleaseType(v)
		if err != nil {
			return store.ReleaseFilter{}, err
		}
		filter.Type = &releaseType
	}
	if v := q.Get("status"); v != "" {
		status, err := domain.ParseReleaseStatus(v)
		if err != nil {
			return store.ReleaseFilter{}, err
		}
		filter.Status = &status
	}

	return filter, nil
}
