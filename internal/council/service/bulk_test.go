package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yplabs/council/internal/council/domain"
)

func TestProvisionBatchEmptyBatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.bulk().ProvisionBatch(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestProvisionBatchPartialFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	env.addYear(t, 2026, false)

	items := []BulkItem{
		{FullName: "First Student", AccountKind: domain.AccountStudent, StudentID: "11111", Year: 2026},
		{FullName: "Broken Student", AccountKind: domain.AccountStudent, StudentID: "bad", Year: 2026},
		{FullName: "Third Student", AccountKind: domain.AccountStudent, StudentID: "33333", Year: 2026},
	}

	results, err := env.bulk().ProvisionBatch(ctx, items)
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.True(t, results[0].Success)
	require.Equal(t, "11111@students.yplabs", results[0].Email)

	require.False(t, results[1].Success)
	require.Contains(t, results[1].Err, "student id")

	require.True(t, results[2].Success)
	require.Equal(t, "33333@students.yplabs", results[2].Email)

	// Items 1 and 3 produced usable accounts despite item 2 failing.
	for _, idx := range []int{0, 2} {
		profile, err := env.store.Profiles().GetProfileByIdentityID(ctx, results[idx].IdentityID)
		require.NoError(t, err)
		require.True(t, profile.Approved)
	}
}

func TestProvisionBatchMissingNameCreatesNoIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	env.addYear(t, 2026, false)

	results, err := env.bulk().ProvisionBatch(ctx, []BulkItem{
		{AccountKind: domain.AccountStudent, StudentID: "11111", Year: 2026},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].Success)
	require.Contains(t, results[0].Err, "name")

	idents, err := env.identity.List(ctx)
	require.NoError(t, err)
	require.Empty(t, idents)
}

func TestProvisionBatchYearRules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	// Three open years; only the two most recent are admissible. One
	// closed year in between must not widen the window.
	env.addYear(t, 2023, false)
	env.addYear(t, 2024, false)
	env.addYear(t, 2025, true)
	env.addYear(t, 2026, false)

	results, err := env.bulk().ProvisionBatch(ctx, []BulkItem{
		{FullName: "In Window A", AccountKind: domain.AccountStudent, StudentID: "11111", Year: 2026},
		{FullName: "In Window B", AccountKind: domain.AccountStudent, StudentID: "22222", Year: 2024},
		{FullName: "Closed Year", AccountKind: domain.AccountStudent, StudentID: "33333", Year: 2025},
		{FullName: "Out Of Window", AccountKind: domain.AccountStudent, StudentID: "44444", Year: 2023},
		{FullName: "Unknown Year", AccountKind: domain.AccountStudent, StudentID: "55555", Year: 1999},
	})
	require.NoError(t, err)
	require.Len(t, results, 5)

	require.True(t, results[0].Success)
	require.True(t, results[1].Success)

	require.False(t, results[2].Success)
	require.Contains(t, results[2].Err, "closed")

	require.False(t, results[3].Success)
	require.Contains(t, results[3].Err, "allowed selection")

	require.False(t, results[4].Success)
	require.Contains(t, results[4].Err, "does not exist")
}

func TestProvisionBatchKindBranches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	env.addYear(t, 2026, false)

	results, err := env.bulk().ProvisionBatch(ctx, []BulkItem{
		{FullName: "Teach A", AccountKind: domain.AccountTeacher, Email: "teach@example.com", Password: "pw", Year: 2026},
		{FullName: "Teach B", AccountKind: domain.AccountTeacher, Year: 2026},
		{FullName: "Other C", AccountKind: domain.AccountOther, Email: "other@example.com", Year: 2026},
		{FullName: "Admin D", AccountKind: domain.AccountOther, Email: "admin@example.com", Password: "pw", Year: 2026, Role: domain.RoleAdmin},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	require.True(t, results[0].Success)
	require.Equal(t, "teach@example.com", results[0].Email)

	require.False(t, results[1].Success, "teacher without email must fail")
	require.False(t, results[2].Success, "other without password must fail")

	require.True(t, results[3].Success)
	profile, err := env.store.Profiles().GetProfileByIdentityID(ctx, results[3].IdentityID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, profile.Role)
}

func TestProvisionBatchRollsBackOnProfileFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	env.addYear(t, 2026, false)

	insertErr := errors.New("profile table unavailable")
	svc := env.bulk()
	svc.Store = &failingProfiles{Store: env.store, insertErr: insertErr}

	results, err := svc.ProvisionBatch(ctx, []BulkItem{
		{FullName: "Rollback Me", AccountKind: domain.AccountStudent, StudentID: "77777", Year: 2026},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.False(t, results[0].Success)
	require.Contains(t, results[0].Err, insertErr.Error())

	idents, err := env.identity.List(ctx)
	require.NoError(t, err)
	require.Empty(t, idents, "the created identity must be rolled back")
}
