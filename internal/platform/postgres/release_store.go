package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/platform/logger"
	"github.com/devluc/finance-api/internal/store"
)

// releaseColumns is the column list shared by every release SELECT.
const releaseColumns = `id, description, month, year, amount_cents, owner_id, type, status, registration_date`

// PostgresReleaseStore implements the store.ReleaseStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReleaseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReleaseStore creates a new PostgreSQL implementation of the
// ReleaseStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresReleaseStore(db store.DBTX, logger *slog.Logger) *PostgresReleaseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReleaseStore{
		db:     db,
		logger: logger.With(slog.String("component", "release_store")),
	}
}

// Ensure PostgresReleaseStore implements store.ReleaseStore interface
var _ store.ReleaseStore = (*PostgresReleaseStore)(nil)

// Create implements store.ReleaseStore.Create
// It saves a new release and fills in the store-assigned ID.
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresReleaseStore) Create(ctx context.Context, release *domain.Release) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO releases (description, month, year, amount_cents, owner_id, type, status, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		release.Description,
		release.Month,
		release.Year,
		release.AmountCents,
		release.OwnerID,
		release.Type,
		release.Status,
		release.RegistrationDate,
	).Scan(&release.ID)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during release creation",
				slog.String("error", err.Error()),
				slog.Int64("owner_id", release.OwnerID))
			return fmt.Errorf("%w: owner with ID %d not found",
				store.ErrInvalidEntity, release.OwnerID)
		}
		log.Error("failed to create release",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", release.OwnerID))
		return err
	}

	log.Info("release created successfully",
		slog.Int64("release_id", release.ID),
		slog.Int64("owner_id", release.OwnerID),
		slog.String("status", string(release.Status)))
	return nil
}

// Update implements store.ReleaseStore.Update
// The registration date column is deliberately left out of the SET list;
// it is stamped once at creation and never overwritten.
// Returns store.ErrReleaseNotFound if the release does not exist.
func (s *PostgresReleaseStore) Update(ctx context.Context, release *domain.Release) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE releases
		SET description = $1, month = $2, year = $3, amount_cents = $4,
		    owner_id = $5, type = $6, status = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		release.Description,
		release.Month,
		release.Year,
		release.AmountCents,
		release.OwnerID,
		release.Type,
		release.Status,
		release.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: owner with ID %d not found",
				store.ErrInvalidEntity, release.OwnerID)
		}
		log.Error("failed to update release",
			slog.String("error", err.Error()),
			slog.Int64("release_id", release.ID))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		log.Debug("release not found for update", slog.Int64("release_id", release.ID))
		return store.ErrReleaseNotFound
	}

	log.Info("release updated successfully",
		slog.Int64("release_id", release.ID),
		slog.String("status", string(release.Status)))
	return nil
}

// Delete implements store.ReleaseStore.Delete
// Returns store.ErrReleaseNotFound if the release does not exist.
func (s *PostgresReleaseStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM releases WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete release",
			slog.String("error", err.Error()),
			slog.Int64("release_id", id))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		log.Debug("release not found for delete", slog.Int64("release_id", id))
		return store.ErrReleaseNotFound
	}

	log.Info("release deleted successfully", slog.Int64("release_id", id))
	return nil
}

// GetByID implements store.ReleaseStore.GetByID
// Returns store.ErrReleaseNotFound if the release does not exist.
func (s *PostgresReleaseStore) GetByID(ctx context.Context, id int64) (*domain.Release, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + releaseColumns + ` FROM releases WHERE id = $1`

	release, err := scanRelease(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("release not found", slog.Int64("release_id", id))
			return nil, store.ErrReleaseNotFound
		}
		log.Error("failed to get release by ID",
			slog.String("error", err.Error()),
			slog.Int64("release_id", id))
		return nil, err
	}

	return release, nil
}

// FindMatching implements store.ReleaseStore.FindMatching
// The WHERE clause is assembled only from the filter fields that are set;
// unset fields do not constrain the result.
func (s *PostgresReleaseStore) FindMatching(
	ctx context.Context,
	filter store.ReleaseFilter,
) ([]*domain.Release, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var conditions []string
	var args []any

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Description != nil {
		addCondition("description ILIKE '%%' || $%d || '%%'", *filter.Description)
	}
	if filter.Month != nil {
		addCondition("month = $%d", *filter.Month)
	}
	if filter.Year != nil {
		addCondition("year = $%d", *filter.Year)
	}
	if filter.OwnerID != nil {
		addCondition("owner_id = $%d", *filter.OwnerID)
	}
	if filter.Type != nil {
		addCondition("type = $%d", *filter.Type)
	}
	if filter.Status != nil {
		addCondition("status = $%d", *filter.Status)
	}

	query := `SELECT ` + releaseColumns + ` FROM releases`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to search releases", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectReleases(rows)
}

// SumByOwnerTypeStatus implements store.ReleaseStore.SumByOwnerTypeStatus
// The window is half-open: [from, to).
func (s *PostgresReleaseStore) SumByOwnerTypeStatus(
	ctx context.Context,
	ownerID int64,
	releaseType domain.ReleaseType,
	status domain.ReleaseStatus,
	from, to time.Time,
) (store.ReleaseSum, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT SUM(amount_cents)
		FROM releases
		WHERE owner_id = $1 AND type = $2 AND status = $3
		  AND registration_date >= $4 AND registration_date < $5
	`

	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, query, ownerID, releaseType, status, from, to).Scan(&total)
	if err != nil {
		log.Error("failed to sum releases",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID),
			slog.String("type", string(releaseType)))
		return store.ReleaseSum{}, err
	}

	return store.ReleaseSum{Cents: total.Int64, Found: total.Valid}, nil
}

// MostRecentByOwner implements store.ReleaseStore.MostRecentByOwner
func (s *PostgresReleaseStore) MostRecentByOwner(
	ctx context.Context,
	ownerID int64,
	from, to time.Time,
) ([]*domain.Release, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + releaseColumns + `
		FROM releases
		WHERE owner_id = $1 AND registration_date >= $2 AND registration_date < $3
		ORDER BY id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, from, to)
	if err != nil {
		log.Error("failed to list recent releases",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectReleases(rows)
}

// PageByOwner implements store.ReleaseStore.PageByOwner
func (s *PostgresReleaseStore) PageByOwner(
	ctx context.Context,
	ownerID int64,
	page, size int,
) ([]*domain.Release, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int64
	countQuery := `SELECT COUNT(id) FROM releases WHERE owner_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		log.Error("failed to count releases",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID))
		return nil, 0, err
	}

	query := `
		SELECT ` + releaseColumns + `
		FROM releases
		WHERE owner_id = $1
		ORDER BY year DESC, month DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, size, page*size)
	if err != nil {
		log.Error("failed to page releases",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", ownerID))
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	releases, err := collectReleases(rows)
	if err != nil {
		return nil, 0, err
	}

	return releases, total, nil
}

// WithTx implements store.ReleaseStore.WithTx
func (s *PostgresReleaseStore) WithTx(tx *sql.Tx) store.ReleaseStore {
	return &PostgresReleaseStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRelease reads one release row in releaseColumns order.
func scanRelease(row rowScanner) (*domain.Release, error) {
	var release domain.Release
	var releaseType, status string

	err := row.Scan(
		&release.ID,
		&release.Description,
		&release.Month,
		&release.Year,
		&release.AmountCents,
		&release.OwnerID,
		&releaseType,
		&status,
		&release.RegistrationDate,
	)
	if err != nil {
		return nil, err
	}

	release.Type = domain.ReleaseType(releaseType)
	release.Status = domain.ReleaseStatus(status)
	return &release, nil
}

// collectReleases drains rows into a slice.
func collectReleases(rows *sql.Rows) ([]*domain.Release, error) {
	var releases []*domain.Release
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, release)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return releases, nil
}
