package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/store"
)

// Identity is the projection of a user returned on successful
// authentication. It never carries the credential secret.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Authenticator verifies credentials against the user store.
type Authenticator struct {
	users    store.UserStore
	verifier PasswordVerifier
	logger   *slog.Logger
}

// NewAuthenticator creates an Authenticator with the given dependencies.
func NewAuthenticator(users store.UserStore, verifier PasswordVerifier, logger *slog.Logger) *Authenticator {
	if users == nil {
		panic("users store cannot be nil")
	}
	if verifier == nil {
		panic("password verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Authenticator{
		users:    users,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "authenticator")),
	}
}

// Authenticate looks the user up by email and verifies the password.
// An unknown email fails with ErrUserNotFoundForEmail and a wrong password
// with ErrInvalidPassword; both are the same rejected-authentication kind,
// only the message differs. On success it returns the identity projection.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			a.logger.Debug("authentication failed: unknown email",
				slog.String("email", email))
			return nil, ErrUserNotFoundForEmail
		}
		a.logger.Error("failed to look up user for authentication",
			slog.String("error", err.Error()),
			slog.String("email", email))
		return nil, err
	}

	if err := a.verifier.Compare(user.HashedPassword, password); err != nil {
		a.logger.Debug("authentication failed: password mismatch",
			slog.Int64("user_id", user.ID))
		return nil, ErrInvalidPassword
	}

	a.logger.Info("user authenticated",
		slog.Int64("user_id", user.ID))

	return identityOf(user), nil
}

// identityOf projects a stored user into its authenticated identity.
func identityOf(user *domain.User) *Identity {
	return &Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}
