package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	s, err := NewStore(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.ApplyMigrations(ctx))
	return s
}

func TestRequestsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Requests()

	req := domain.RegistrationRequest{
		ID:          "req-1",
		FullName:    "Jamie Park",
		AccountKind: domain.AccountStudent,
		StudentID:   "12345",
		Year:        2026,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.CreateRequest(ctx, req))

	got, err := repo.GetRequestByID(ctx, "req-1")
	require.NoError(t, err)
	require.Equal(t, "Jamie Park", got.FullName)
	require.Equal(t, domain.AccountStudent, got.AccountKind)

	exists, err := repo.ExistsByStudentID(ctx, "12345")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRequestsListOldestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Requests()

	base := time.Now().UTC()
	for i, id := range []string{"b", "a", "c"} {
		require.NoError(t, repo.CreateRequest(ctx, domain.RegistrationRequest{
			ID:          id,
			FullName:    "Member " + id,
			AccountKind: domain.AccountOther,
			Email:       id + "@example.com",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := repo.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "b", list[0].ID)
	require.Equal(t, "c", list[2].ID)
}

// Duplicate student ids are not constrained at the storage layer; the
// pre-insert existence check in intake is best effort and two racing
// submissions may both land.
func TestRequestsTolerateDuplicateStudentID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Requests()

	for _, id := range []string{"req-1", "req-2"} {
		require.NoError(t, repo.CreateRequest(ctx, domain.RegistrationRequest{
			ID:          id,
			FullName:    "Racer",
			AccountKind: domain.AccountStudent,
			StudentID:   "12345",
			Year:        2026,
			CreatedAt:   time.Now().UTC(),
		}))
	}

	list, err := repo.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestDeleteRequestIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Requests().DeleteRequest(ctx, "missing"))
}

func TestGetRequestByIDNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Requests().GetRequestByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestProfilesUniqueIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Profiles()

	p := domain.Profile{
		ID:          "prof-1",
		IdentityID:  "ident-1",
		FullName:    "Morgan Lee",
		AccountKind: domain.AccountTeacher,
		Role:        domain.RoleMember,
		Approved:    true,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.CreateProfile(ctx, p))

	p.ID = "prof-2"
	err := repo.CreateProfile(ctx, p)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestProfilesUpdateFlags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Profiles()

	require.NoError(t, repo.CreateProfile(ctx, domain.Profile{
		ID:          "prof-1",
		IdentityID:  "ident-1",
		FullName:    "Morgan Lee",
		AccountKind: domain.AccountTeacher,
		Role:        domain.RoleMember,
		Approved:    true,
		CreatedAt:   time.Now().UTC(),
	}))

	admin := domain.RoleAdmin
	disabled := true
	require.NoError(t, repo.UpdateProfileFlags(ctx, "ident-1", store.ProfileUpdate{
		Role:     &admin,
		Disabled: &disabled,
	}))

	got, err := repo.GetProfileByIdentityID(ctx, "ident-1")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.True(t, got.Disabled)
	require.True(t, got.Approved, "untouched flag must keep its value")
}

func TestDeleteProfileNotFound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	err := s.Profiles().DeleteProfileByIdentityID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCohortsDuplicateYear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Cohorts()

	require.NoError(t, repo.CreateCohort(ctx, domain.Cohort{Year: 2026, CreatedAt: time.Now().UTC()}))

	err := repo.CreateCohort(ctx, domain.Cohort{Year: 2026, CreatedAt: time.Now().UTC()})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestListOpenYearsSkipsClosed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	repo := s.Cohorts()

	now := time.Now().UTC()
	require.NoError(t, repo.CreateCohort(ctx, domain.Cohort{Year: 2024, CreatedAt: now}))
	require.NoError(t, repo.CreateCohort(ctx, domain.Cohort{Year: 2025, Closed: true, CreatedAt: now}))
	require.NoError(t, repo.CreateCohort(ctx, domain.Cohort{Year: 2026, CreatedAt: now}))
	require.NoError(t, repo.CreateCohort(ctx, domain.Cohort{Year: 2023, CreatedAt: now}))

	years, err := repo.ListOpenYears(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []int{2026, 2024}, years)
}
