package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/devluc/finance-api/internal/api/shared"
	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/service"
	"github.com/devluc/finance-api/internal/service/auth"
)

// AuthHandler handles user registration and authentication requests.
type AuthHandler struct {
	userService   *service.UserService
	authenticator *auth.Authenticator
	jwtService    auth.JWTService
	validator     *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userService *service.UserService,
	authenticator *auth.Authenticator,
	jwtService auth.JWTService,
) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		authenticator: authenticator,
		jwtService:    jwtService,
		validator:     validator.New(),
	}
}

// Register handles POST /api/users requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if domain.IsValidationError(err) {
			HandleAPIError(w, r, err, "")
			return
		}
		slog.Error("failed to create user", "error", err, "email", req.Email)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AccessToken: token,
	})
}

// Authenticate handles POST /api/users/authenticate requests. A rejected
// authentication reports its reason verbatim: unknown email and wrong
// password read differently.
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	identity, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if auth.IsAuthenticationError(err) {
			HandleAPIError(w, r, err, "")
			return
		}
		slog.Error("failed to authenticate user", "error", err, "email", req.Email)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate user")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), identity.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", identity.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:      identity.ID,
		Name:        identity.Name,
		Email:       identity.Email,
		AccessToken: token,
	})
}
