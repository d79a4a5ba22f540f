package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yplabs/council/internal/council/audit"
	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/identity/local"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/internal/council/store/drivers/sqlite"
	"github.com/yplabs/council/pkg/jwtx"
)

// testEnv wires real in-memory stores behind the service structs.
type testEnv struct {
	store    store.Store
	identity *local.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()

	s, err := sqlite.NewStore(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.ApplyMigrations(ctx))

	signer, err := jwtx.NewSigner("council-accounts-test")
	require.NoError(t, err)

	ident, err := local.NewStore(ctx, ":memory:", signer)
	require.NoError(t, err)
	t.Cleanup(func() { ident.Close() })

	return &testEnv{store: s, identity: ident}
}

func (e *testEnv) intake() *IntakeService {
	return &IntakeService{Store: e.store}
}

func (e *testEnv) approval() *ApprovalService {
	return &ApprovalService{Store: e.store, Identity: e.identity, Audit: audit.LogSink{}}
}

func (e *testEnv) bulk() *BulkService {
	return &BulkService{Store: e.store, Identity: e.identity, Audit: audit.LogSink{}}
}

func (e *testEnv) cohorts() *CohortService {
	return &CohortService{Store: e.store, Audit: audit.LogSink{}}
}

func (e *testEnv) accounts() *AccountService {
	return &AccountService{Store: e.store, Identity: e.identity, Audit: audit.LogSink{}}
}

func (e *testEnv) authz() *AuthzService {
	return &AuthzService{Store: e.store, Identity: e.identity}
}

// addYear seeds a cohort directly through the store.
func (e *testEnv) addYear(t *testing.T, year int, closed bool) {
	t.Helper()
	require.NoError(t, e.store.Cohorts().CreateCohort(context.Background(), domain.Cohort{
		Year:      year,
		Closed:    closed,
		CreatedAt: time.Now().UTC(),
	}))
}
