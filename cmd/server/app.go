package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/devluc/finance-api/internal/config"
	"github.com/devluc/finance-api/internal/platform/postgres"
	"github.com/devluc/finance-api/internal/service"
	"github.com/devluc/finance-api/internal/service/auth"
	"github.com/devluc/finance-api/internal/store"
)

// application holds the assembled dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db *sql.DB

	userStore    store.UserStore
	releaseStore store.ReleaseStore

	userService    *service.UserService
	releaseService *service.ReleaseService
	authenticator  *auth.Authenticator
	jwtService     auth.JWTService
}

// newApplication wires the full dependency graph: database, stores,
// services and authentication.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(cfg.Database.URL, logger)
	if err != nil {
		return nil, err
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	releaseStore := postgres.NewPostgresReleaseStore(db, logger)

	passwordService := auth.NewBcryptPasswordService(cfg.Auth.BcryptCost)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		userStore:      userStore,
		releaseStore:   releaseStore,
		userService:    service.NewUserService(db, userStore, passwordService, logger),
		releaseService: service.NewReleaseService(db, releaseStore, userStore, logger),
		authenticator:  auth.NewAuthenticator(userStore, passwordService, logger),
		jwtService:     jwtService,
	}, nil
}

// openDatabase connects to Postgres through the pgx stdlib driver and
// verifies the connection before returning.
func openDatabase(url string, logger *slog.Logger) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty: check your configuration")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}

func closeDatabase(db *sql.DB, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}

// cleanup releases the application's resources on shutdown.
func (app *application) cleanup() {
	closeDatabase(app.db, app.logger)
}
