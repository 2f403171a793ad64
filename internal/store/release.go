package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/devluc/finance-api/internal/domain"
)

// ReleaseFilter is an explicit predicate for release searches. A nil field
// is ignored, not constrained; Description matches as a case-insensitive
// substring, every other field matches exactly.
type ReleaseFilter struct {
	Description *string
	Month       *int
	Year        *int
	OwnerID     *int64
	Type        *domain.ReleaseType
	Status      *domain.ReleaseStatus
}

// ReleaseSum is the result of an aggregate sum query. Found is false when
// the query yielded no rows; callers decide how absence is represented.
type ReleaseSum struct {
	Cents int64
	Found bool
}

// ReleaseStore defines the interface for release data persistence.
type ReleaseStore interface {
	// Create saves a new release and fills in its store-assigned ID.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, release *domain.Release) error

	// Update overwrites an existing release by ID. The registration date
	// column is not touched. Returns ErrReleaseNotFound if the release
	// does not exist.
	Update(ctx context.Context, release *domain.Release) error

	// Delete removes a release by its ID.
	// Returns ErrReleaseNotFound if the release does not exist.
	Delete(ctx context.Context, id int64) error

	// GetByID retrieves a release by its unique ID.
	// Returns ErrReleaseNotFound if the release does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Release, error)

	// FindMatching returns all releases matching the filter, newest first.
	FindMatching(ctx context.Context, filter ReleaseFilter) ([]*domain.Release, error)

	// SumByOwnerTypeStatus sums the amounts of an owner's releases of the
	// given type and status whose registration date falls in [from, to).
	SumByOwnerTypeStatus(
		ctx context.Context,
		ownerID int64,
		releaseType domain.ReleaseType,
		status domain.ReleaseStatus,
		from, to time.Time,
	) (ReleaseSum, error)

	// MostRecentByOwner returns the owner's releases registered in
	// [from, to), ordered by ID descending. IDs are assigned monotonically
	// at creation, so ID order is a practical proxy for recency.
	MostRecentByOwner(ctx context.Context, ownerID int64, from, to time.Time) ([]*domain.Release, error)

	// PageByOwner returns one page of the owner's releases sorted by year,
	// month and ID, all descending, plus the owner's total release count.
	// The page index is zero-based.
	PageByOwner(ctx context.Context, ownerID int64, page, size int) ([]*domain.Release, int64, error)

	// WithTx returns a ReleaseStore bound to the given transaction, so
	// several operations can share one transaction boundary.
	WithTx(tx *sql.Tx) ReleaseStore
}
