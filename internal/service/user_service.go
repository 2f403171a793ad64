package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/service/auth"
	"github.com/devluc/finance-api/internal/store"
)

// UserService owns user registration and lookup. Passwords never reach
// the store in plaintext.
type UserService struct {
	db     *sql.DB
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a UserService with the given dependencies.
func NewUserService(
	db *sql.DB,
	users store.UserStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) *UserService {
	if users == nil {
		panic("users store cannot be nil")
	}
	if hasher == nil {
		panic("password hasher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		db:     db,
		users:  users,
		hasher: hasher,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// CreateUser validates and registers a new user, rejecting already
// registered emails before hashing the password. The plaintext password
// is cleared from the returned user.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(name, email, password)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailRegistered
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		// The existence check above races with concurrent registrations;
		// the unique constraint is authoritative.
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domain.ErrEmailRegistered
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", slog.Int64("user_id", user.ID))
	return user, nil
}

// GetByID retrieves a user. An absent record is reported through the
// found flag, never as an error.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}
	return user, true, nil
}

// EmailAvailable reports whether the email is free to register.
func (s *UserService) EmailAvailable(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return !exists, nil
}
