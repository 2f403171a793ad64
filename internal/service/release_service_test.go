package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devluc/finance-api/internal/domain"
	"github.com/devluc/finance-api/internal/store"
)

func newReleaseService(t *testing.T) (*ReleaseService, *mockReleaseStore, *mockUserStore) {
	t.Helper()

	releases := new(mockReleaseStore)
	users := new(mockUserStore)
	svc := NewReleaseService(newTestDB(), releases, users, slog.Default())
	return svc, releases, users
}

func validRelease(ownerID int64) *domain.Release {
	return &domain.Release{
		Description: "salary",
		Month:       7,
		Year:        2025,
		AmountCents: 520000,
		OwnerID:     ownerID,
		Type:        domain.ReleaseTypeIncome,
	}
}

func expectOwner(users *mockUserStore, id int64) {
	users.On("GetByID", mock.Anything, id).
		Return(&domain.User{ID: id, Name: "Test User", Email: "test@example.com"}, nil)
}

func TestReleaseService_Create(t *testing.T) {
	t.Parallel()

	t.Run("forces pending status and stamps registration date", func(t *testing.T) {
		t.Parallel()

		svc, releases, users := newReleaseService(t)
		now := time.Date(2025, 7, 14, 10, 30, 0, 0, time.UTC)
		svc.timeFunc = func() time.Time { return now }

		expectOwner(users, 42)
		releases.On("Create", mock.Anything, mock.AnythingOfType("*domain.Release")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*domain.Release).ID = 7
			}).
			Return(nil)

		release := validRelease(42)
		release.Status = domain.ReleaseStatusSettled // Caller-supplied status is ignored

		created, err := svc.Create(context.Background(), release)
		require.NoError(t, err)
		assert.Equal(t, int64(7), created.ID)
		assert.Equal(t, domain.ReleaseStatusPending, created.Status)
		assert.Equal(t, now, created.RegistrationDate)
		releases.AssertExpectations(t)
	})

	t.Run("rejects invalid release before touching the store", func(t *testing.T) {
		t.Parallel()

		svc, releases, users := newReleaseService(t)

		release := validRelease(42)
		release.Description = "   "

		_, err := svc.Create(context.Background(), release)
		assert.ErrorIs(t, err, domain.ErrInvalidDescription)
		releases.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown owner", func(t *testing.T) {
		t.Parallel()

		svc, releases, users := newReleaseService(t)
		users.On("GetByID", mock.Anything, int64(99)).
			Return(nil, store.ErrUserNotFound)

		_, err := svc.Create(context.Background(), validRelease(99))
		assert.ErrorIs(t, err, domain.ErrOwnerRequired)
		releases.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("propagates store failure", func(t *testing.T) {
		t.Parallel()

		svc, releases, users := newReleaseService(t)
		expectOwner(users, 42)
		releases.On("Create", mock.Anything, mock.Anything).
			Return(errors.New("connection reset"))

		_, err := svc.Create(context.Background(), validRelease(42))
		require.Error(t, err)
		assert.False(t, domain.IsValidationError(err))
	})
}

func TestReleaseService_ValidationOrder(t *testing.T) {
	t.Parallel()

	// Several rules broken at once: the first rule in evaluation order
	// determines the error, so callers see deterministic messages.
	tests := []struct {
		name    string
		mutate  func(r *domain.Release)
		wantErr error
	}{
		{
			name: "description before month",
			mutate: func(r *domain.Release) {
				r.Description = ""
				r.Month = 13
			},
			wantErr: domain.ErrInvalidDescription,
		},
		{
			name: "month before year",
			mutate: func(r *domain.Release) {
				r.Month = 0
				r.Year = 10000
			},
			wantErr: domain.ErrInvalidMonth,
		},
		{
			name: "year before owner",
			mutate: func(r *domain.Release) {
				r.Year = 999
				r.OwnerID = 0
			},
			wantErr: domain.ErrInvalidYear,
		},
		{
			name: "owner before value",
			mutate: func(r *domain.Release) {
				r.OwnerID = 0
				r.AmountCents = -100
			},
			wantErr: domain.ErrOwnerRequired,
		},
		{
			name: "value before type",
			mutate: func(r *domain.Release) {
				r.AmountCents = 0
				r.Type = ""
			},
			wantErr: domain.ErrInvalidValue,
		},
		{
			name: "type last",
			mutate: func(r *domain.Release) {
				r.Type = ""
			},
			wantErr: domain.ErrTypeRequired,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, _, users := newReleaseService(t)
			expectOwner(users, 42)

			release := validRelease(42)
			tc.mutate(release)

			_, err := svc.Create(context.Background(), release)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestReleaseService_Update(t *testing.T) {
	t.Parallel()

	t.Run("persists changes and keeps status", func(t *testing.T) {
		t.Parallel()

		svc, releases, users := newReleaseService(t)
		expectOwner(users, 42)
		releases.On("Update", mock.Anything, mock.AnythingOfType("*domain.Release")).
			Return(nil)

		release := validRelease(42)
		release.ID = 7
		release.Status = domain.ReleaseStatusSettled

		updated, err := svc.Update(context.Background(), release)
		require.NoError(t, err)
		assert.Equal(t, domain.ReleaseStatusSettled, updated.Status)
		releases.AssertExpectations(t)
	})

	t.Run("panics without an ID", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)

		assert.Panics(t, func() {
			_, _ = svc.Update(context.Background(), validRelease(42))
		})
		releases.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("returns not found from the store", func(t *testing.T) {
		t.Parallel()

		svc, releases, users := newReleaseService(t)
		expectOwner(users, 42)
		releases.On("Update", mock.Anything, mock.Anything).
			Return(store.ErrReleaseNotFound)

		release := validRelease(42)
		release.ID = 404

		_, err := svc.Update(context.Background(), release)
		assert.ErrorIs(t, err, store.ErrReleaseNotFound)
	})
}

func TestReleaseService_UpdateStatus(t *testing.T) {
	t.Parallel()

	// Status transitions are free form: settled back to pending, canceled
	// to settled, any combination goes.
	transitions := []struct {
		from domain.ReleaseStatus
		to   domain.ReleaseStatus
	}{
		{domain.ReleaseStatusPending, domain.ReleaseStatusSettled},
		{domain.ReleaseStatusSettled, domain.ReleaseStatusPending},
		{domain.ReleaseStatusCanceled, domain.ReleaseStatusSettled},
		{domain.ReleaseStatusSettled, domain.ReleaseStatusCanceled},
	}

	for _, tc := range transitions {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			t.Parallel()

			svc, releases, users := newReleaseService(t)
			expectOwner(users, 42)
			releases.On("Update", mock.Anything, mock.Anything).Return(nil)

			release := validRelease(42)
			release.ID = 7
			release.Status = tc.from

			updated, err := svc.UpdateStatus(context.Background(), release, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.to, updated.Status)
		})
	}
}

func TestReleaseService_Delete(t *testing.T) {
	t.Parallel()

	t.Run("deletes by ID", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)
		releases.On("Delete", mock.Anything, int64(7)).Return(nil)

		release := validRelease(42)
		release.ID = 7

		err := svc.Delete(context.Background(), release)
		require.NoError(t, err)
		releases.AssertExpectations(t)
	})

	t.Run("panics without an ID", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)

		assert.Panics(t, func() {
			_ = svc.Delete(context.Background(), validRelease(42))
		})
		releases.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("returns not found from the store", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)
		releases.On("Delete", mock.Anything, int64(404)).
			Return(store.ErrReleaseNotFound)

		release := validRelease(42)
		release.ID = 404

		err := svc.Delete(context.Background(), release)
		assert.ErrorIs(t, err, store.ErrReleaseNotFound)
	})
}

func TestReleaseService_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)
		want := validRelease(42)
		want.ID = 7
		releases.On("GetByID", mock.Anything, int64(7)).Return(want, nil)

		got, found, err := svc.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, want, got)
	})

	t.Run("absence is not an error", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)
		releases.On("GetByID", mock.Anything, int64(404)).
			Return(nil, store.ErrReleaseNotFound)

		got, found, err := svc.GetByID(context.Background(), 404)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})
}

func TestReleaseService_Search(t *testing.T) {
	t.Parallel()

	svc, releases, _ := newReleaseService(t)

	desc := "rent"
	year := 2025
	filter := store.ReleaseFilter{Description: &desc, Year: &year}
	want := []*domain.Release{validRelease(42)}
	releases.On("FindMatching", mock.Anything, filter).Return(want, nil)

	got, err := svc.Search(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	releases.AssertExpectations(t)
}

func TestReleaseService_LastReleases(t *testing.T) {
	t.Parallel()

	svc, releases, _ := newReleaseService(t)
	now := time.Date(2025, 7, 14, 10, 30, 0, 0, time.UTC)
	svc.timeFunc = func() time.Time { return now }

	want := []*domain.Release{validRelease(42)}
	releases.On("MostRecentByOwner", mock.Anything, int64(42),
		now.Add(-30*24*time.Hour), now).
		Return(want, nil)

	got, err := svc.LastReleases(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	releases.AssertExpectations(t)
}

func TestReleaseService_PageByOwner(t *testing.T) {
	t.Parallel()

	t.Run("returns a page with the total count", func(t *testing.T) {
		t.Parallel()

		svc, releases, users := newReleaseService(t)
		expectOwner(users, 42)

		items := []*domain.Release{validRelease(42)}
		releases.On("PageByOwner", mock.Anything, int64(42), 2, 10).
			Return(items, int64(23), nil)

		page, err := svc.PageByOwner(context.Background(), 42, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, items, page.Items)
		assert.Equal(t, int64(23), page.Total)
	})

	t.Run("unknown owner yields an empty page", func(t *testing.T) {
		t.Parallel()

		svc, releases, users := newReleaseService(t)
		users.On("GetByID", mock.Anything, int64(99)).
			Return(nil, store.ErrUserNotFound)

		page, err := svc.PageByOwner(context.Background(), 99, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.NotNil(t, page.Items)
		assert.Zero(t, page.Total)
		releases.AssertNotCalled(t, "PageByOwner",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReleaseService_BalanceByOwner(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 7, 14, 10, 30, 0, 0, time.UTC)
	from := now.Add(-30 * 24 * time.Hour)

	t.Run("settled income minus settled expenses", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)
		svc.timeFunc = func() time.Time { return now }

		releases.On("SumByOwnerTypeStatus", mock.Anything, int64(42),
			domain.ReleaseTypeIncome, domain.ReleaseStatusSettled, from, now).
			Return(store.ReleaseSum{Cents: 520000, Found: true}, nil)
		releases.On("SumByOwnerTypeStatus", mock.Anything, int64(42),
			domain.ReleaseTypeExpense, domain.ReleaseStatusSettled, from, now).
			Return(store.ReleaseSum{Cents: 130050, Found: true}, nil)

		balance, err := svc.BalanceByOwner(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(389950), balance)
	})

	t.Run("absent sums count as zero", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)
		svc.timeFunc = func() time.Time { return now }

		releases.On("SumByOwnerTypeStatus", mock.Anything, int64(42),
			domain.ReleaseTypeIncome, domain.ReleaseStatusSettled, from, now).
			Return(store.ReleaseSum{Cents: 100000, Found: true}, nil)
		releases.On("SumByOwnerTypeStatus", mock.Anything, int64(42),
			domain.ReleaseTypeExpense, domain.ReleaseStatusSettled, from, now).
			Return(store.ReleaseSum{}, nil)

		balance, err := svc.BalanceByOwner(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, int64(100000), balance)
	})

	t.Run("no releases at all yields zero", func(t *testing.T) {
		t.Parallel()

		svc, releases, _ := newReleaseService(t)
		svc.timeFunc = func() time.Time { return now }

		releases.On("SumByOwnerTypeStatus", mock.Anything, int64(42),
			mock.Anything, domain.ReleaseStatusSettled, from, now).
			Return(store.ReleaseSum{}, nil)

		balance, err := svc.BalanceByOwner(context.Background(), 42)
		require.NoError(t, err)
		assert.Zero(t, balance)
	})
}

func TestReleaseService_ExtractByType(t *testing.T) {
	t.Parallel()

	svc, releases, _ := newReleaseService(t)
	now := time.Date(2025, 7, 14, 10, 30, 0, 0, time.UTC)
	svc.timeFunc = func() time.Time { return now }
	from := now.Add(-30 * 24 * time.Hour)

	releases.On("SumByOwnerTypeStatus", mock.Anything, int64(42),
		domain.ReleaseTypeExpense, domain.ReleaseStatusSettled, from, now).
		Return(store.ReleaseSum{Cents: 4550, Found: true}, nil)

	total, err := svc.ExtractByType(context.Background(), 42, domain.ReleaseTypeExpense)
	require.NoError(t, err)
	assert.Equal(t, int64(4550), total)
}
