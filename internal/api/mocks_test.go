package api

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devluc/finance-api/internal/config"
	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/service"
	"github.com/devluc/finance-api/internal/service/auth"
	"github.com/devluc/finance-api/internal/store"
)

// Handlers are exercised against real services wired over mock stores;
// only the persistence boundary is faked.

type noopDriver struct{}

func (noopDriver) Open(name string) (driver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(query string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (noopConn) Close() error                              { return nil }
func (noopConn) Begin() (driver.Tx, error)                 { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

var registerNoopDriver sync.Once

func newTestDB() *sql.DB {
	registerNoopDriver.Do(func() {
		sql.Register("api_noop", noopDriver{})
	})
	db, err := sql.Open("api_noop", "")
	if err != nil {
		panic(err)
	}
	return db
}

type mockReleaseStore struct {
	mock.Mock
}

var _ store.ReleaseStore = (*mockReleaseStore)(nil)

func (m *mockReleaseStore) Create(ctx context.Context, release *domain.Release) error {
	args := m.Called(ctx, release)
	return args.Error(0)
}

func (m *mockReleaseStore) Update(ctx context.Context, release *domain.Release) error {
	args := m.Called(ctx, release)
	return args.Error(0)
}

func (m *mockReleaseStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReleaseStore) GetByID(ctx context.Context, id int64) (*domain.Release, error) {
	args := m.Called(ctx, id)
	if release, ok := args.Get(0).(*domain.Release); ok {
		return release, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReleaseStore) FindMatching(ctx context.Context, filter store.ReleaseFilter) ([]*domain.Release, error) {
	args := m.Called(ctx, filter)
	if releases, ok := args.Get(0).([]*domain.Release); ok {
		return releases, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReleaseStore) SumByOwnerTypeStatus(
	ctx context.Context,
	ownerID int64,
	releaseType domain.ReleaseType,
	status domain.ReleaseStatus,
	from, to time.Time,
) (store.ReleaseSum, error) {
	args := m.Called(ctx, ownerID, releaseType, status, from, to)
	return args.Get(0).(store.ReleaseSum), args.Error(1)
}

func (m *mockReleaseStore) MostRecentByOwner(
	ctx context.Context,
	ownerID int64,
	from, to time.Time,
) ([]*domain.Release, error) {
	args := m.Called(ctx, ownerID, from, to)
	if releases, ok := args.Get(0).([]*domain.Release); ok {
		return releases, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReleaseStore) PageByOwner(
	ctx context.Context,
	ownerID int64,
	page, size int,
) ([]*domain.Release, int64, error) {
	args := m.Called(ctx, ownerID, page, size)
	if releases, ok := args.Get(0).([]*domain.Release); ok {
		return releases, args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *mockReleaseStore) WithTx(tx *sql.Tx) store.ReleaseStore {
	return m
}

type mockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*mockUserStore)(nil)

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// testEnv bundles everything a handler test needs.
type testEnv struct {
	releases   *mockReleaseStore
	users      *mockUserStore
	jwtService auth.JWTService

	releaseHandler *ReleaseHandler
	authHandler    *AuthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	releases := new(mockReleaseStore)
	users := new(mockUserStore)
	logger := slog.Default()
	db := newTestDB()

	passwordService := auth.NewBcryptPasswordService(4)
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-thats-long-enough-for-hmac",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	userService := service.NewUserService(db, users, passwordService, logger)
	releaseService := service.NewReleaseService(db, releases, users, logger)
	authenticator := auth.NewAuthenticator(users, passwordService, logger)

	return &testEnv{
		releases:       releases,
		users:          users,
		jwtService:     jwtService,
		releaseHandler: NewReleaseHandler(releaseService, userService),
		authHandler:    NewAuthHandler(userService, authenticator, jwtService),
	}
}
