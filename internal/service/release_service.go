// Package service implements the business operations on releases and users.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/store"
)

// aggregationWindow is the trailing period over which balances, extracts
// and recent-release listings are computed. The window is evaluated at
// query time, so the same query re-run later naturally ages records out.
const aggregationWindow = 30 * 24 * time.Hour

// ReleasePage is one page of an owner's releases plus the owner's total
// release count.
type ReleasePage struct {
	Items []*domain.Release `json:"items"`
	Total int64             `json:"total"`
}

// ReleaseService owns release validation, the status lifecycle, and
// balance/extract computation over the release store.
type ReleaseService struct {
	db       *sql.DB
	releases store.ReleaseStore
	users    store.UserStore
	logger   *slog.Logger
	timeFunc func() time.Time // Injectable for testing
}

// NewReleaseService creates a ReleaseService with the given dependencies.
// db may be nil only in tests that never reach a write path.
func NewReleaseService(
	db *sql.DB,
	releases store.ReleaseStore,
	users store.UserStore,
	logger *slog.Logger,
) *ReleaseService {
	if releases == nil {
		panic("releases store cannot be nil")
	}
	if users == nil {
		panic("users store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReleaseService{
		db:       db,
		releases: releases,
		users:    users,
		logger:   logger.With(slog.String("component", "release_service")),
		timeFunc: time.Now,
	}
}

// Create validates the release, forces its status to PENDING, stamps the
// registration date and persists it. The returned release carries the
// store-assigned ID. Validation failure aborts before any store write.
func (s *ReleaseService) Create(ctx context.Context, release *domain.Release) (*domain.Release, error) {
	if err := s.validate(ctx, release); err != nil {
		return nil, err
	}

	release.Status = domain.ReleaseStatusPending
	release.RegistrationDate = s.timeFunc().UTC()

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.releases.WithTx(tx).Create(ctx, release)
	})
	if err != nil {
		s.logger.Error("failed to create release",
			slog.String("error", err.Error()),
			slog.Int64("owner_id", release.OwnerID))
		return nil, fmt.Errorf("failed to create release: %w", err)
	}

	s.logger.Info("release created",
		slog.Int64("release_id", release.ID),
		slog.Int64("owner_id", release.OwnerID))
	return release, nil
}

// Update validates and persists an existing release. The release must
// already carry a store-assigned ID; calling Update without one is a
// programming error and panics. The registration date is not touched.
func (s *ReleaseService) Update(ctx context.Context, release *domain.Release) (*domain.Release, error) {
	if release.ID == 0 {
		panic("release ID is required for update")
	}

	if err := s.validate(ctx, release); err != nil {
		return nil, err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.releases.WithTx(tx).Update(ctx, release)
	})
	if err != nil {
		if errors.Is(err, store.ErrReleaseNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update release",
			slog.String("error", err.Error()),
			slog.Int64("release_id", release.ID))
		return nil, fmt.Errorf("failed to update release: %w", err)
	}

	s.logger.Info("release updated", slog.Int64("release_id", release.ID))
	return release, nil
}

// UpdateStatus sets the status on an existing release and routes it
// through Update, so validation re-runs. Transitions are deliberately
// unconstrained: any status may be set to any other.
func (s *ReleaseService) UpdateStatus(
	ctx context.Context,
	release *domain.Release,
	status domain.ReleaseStatus,
) (*domain.Release, error) {
	release.Status = status
	return s.Update(ctx, release)
}

// Delete removes a release permanently. The release must carry a
// store-assigned ID; calling Delete without one is a programming error
// and panics.
func (s *ReleaseService) Delete(ctx context.Context, release *domain.Release) error {
	if release.ID == 0 {
		panic("release ID is required for delete")
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.releases.WithTx(tx).Delete(ctx, release.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrReleaseNotFound) {
			return err
		}
		s.logger.Error("failed to delete release",
			slog.String("error", err.Error()),
			slog.Int64("release_id", release.ID))
		return fmt.Errorf("failed to delete release: %w", err)
	}

	s.logger.Info("release deleted", slog.Int64("release_id", release.ID))
	return nil
}

// GetByID retrieves a release. An absent record is reported through the
// found flag, never as an error.
func (s *ReleaseService) GetByID(ctx context.Context, id int64) (*domain.Release, bool, error) {
	release, err := s.releases.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrReleaseNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get release: %w", err)
	}
	return release, true, nil
}

// Search returns all releases matching the filter. Unset filter fields
// are ignored; text matching is a case-insensitive substring match.
func (s *ReleaseService) Search(ctx context.Context, filter store.ReleaseFilter) ([]*domain.Release, error) {
	releases, err := s.releases.FindMatching(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search releases: %w", err)
	}
	return releases, nil
}

// LastReleases returns the owner's releases registered within the
// trailing window, newest first (ID descending).
func (s *ReleaseService) LastReleases(ctx context.Context, ownerID int64) ([]*domain.Release, error) {
	from, to := s.window()
	releases, err := s.releases.MostRecentByOwner(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent releases: %w", err)
	}
	return releases, nil
}

// PageByOwner returns one page of the owner's releases sorted by year,
// month and ID descending, plus the owner's total count. An unknown owner
// yields an empty page with a zero total, not an error.
func (s *ReleaseService) PageByOwner(ctx context.Context, ownerID int64, page, size int) (*ReleasePage, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("paginated listing for unknown owner",
				slog.Int64("owner_id", ownerID))
			return &ReleasePage{Items: []*domain.Release{}, Total: 0}, nil
		}
		return nil, fmt.Errorf("failed to check owner: %w", err)
	}

	items, total, err := s.releases.PageByOwner(ctx, ownerID, page, size)
	if err != nil {
		return nil, fmt.Errorf("failed to page releases: %w", err)
	}
	if items == nil {
		items = []*domain.Release{}
	}

	return &ReleasePage{Items: items, Total: total}, nil
}

// BalanceByOwner computes the owner's settled balance over the trailing
// window: settled income minus settled expenses. Absent sums count as zero.
func (s *ReleaseService) BalanceByOwner(ctx context.Context, ownerID int64) (int64, error) {
	income, err := s.ExtractByType(ctx, ownerID, domain.ReleaseTypeIncome)
	if err != nil {
		return 0, err
	}

	expense, err := s.ExtractByType(ctx, ownerID, domain.ReleaseTypeExpense)
	if err != nil {
		return 0, err
	}

	return income - expense, nil
}

// ExtractByType sums the owner's settled releases of one type over the
// trailing window. Returns exactly zero when no rows match.
func (s *ReleaseService) ExtractByType(
	ctx context.Context,
	ownerID int64,
	releaseType domain.ReleaseType,
) (int64, error) {
	from, to := s.window()
	sum, err := s.releases.SumByOwnerTypeStatus(
		ctx, ownerID, releaseType, domain.ReleaseStatusSettled, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to sum releases: %w", err)
	}
	if !sum.Found {
		return 0, nil
	}
	return sum.Cents, nil
}

// window returns the half-open trailing interval [now-30d, now),
// evaluated against the injectable time source.
func (s *ReleaseService) window() (time.Time, time.Time) {
	now := s.timeFunc().UTC()
	return now.Add(-aggregationWindow), now
}

// validate runs the release business rules and then verifies the owner
// exists. The field rules run in a fixed order (description, month, year,
// owner reference, value, type), so the first failing rule determines the
// error message.
func (s *ReleaseService) validate(ctx context.Context, release *domain.Release) error {
	if err := release.Validate(); err != nil {
		return err
	}

	if _, err := s.users.GetByID(ctx, release.OwnerID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.ErrOwnerRequired
		}
		return fmt.Errorf("failed to check owner: %w", err)
	}

	return nil
}
