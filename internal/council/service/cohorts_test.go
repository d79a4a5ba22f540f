package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddYearAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.cohorts()

	require.NoError(t, svc.AddYear(ctx, 2025, false))
	require.NoError(t, svc.AddYear(ctx, 2026, false))
	require.NoError(t, svc.AddYear(ctx, 2024, true))

	years, err := svc.ListYears(ctx)
	require.NoError(t, err)
	require.Len(t, years, 3)
	require.Equal(t, 2026, years[0].Year, "newest first")
	require.Equal(t, 2024, years[2].Year)
	require.True(t, years[2].Closed)
}

func TestAddYearValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	svc := env.cohorts()

	require.ErrorIs(t, svc.AddYear(context.Background(), 0, false), ErrValidation)
	require.ErrorIs(t, svc.AddYear(context.Background(), -3, false), ErrValidation)
}

func TestAddYearDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.cohorts()

	require.NoError(t, svc.AddYear(ctx, 2026, false))
	require.ErrorIs(t, svc.AddYear(ctx, 2026, false), ErrConflict)
}
