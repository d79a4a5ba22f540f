package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/pkg/jwtx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	signer, err := jwtx.NewSigner("council-accounts-test")
	require.NoError(t, err)

	s, err := NewStore(context.Background(), ":memory:", signer)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	ident, err := s.Create(ctx, identity.CreateParams{
		Email:          " Casey@Example.COM ",
		Password:       "secret-pass",
		EmailConfirmed: true,
		FullName:       "Casey Kim",
		StudentID:      "12345",
	})
	require.NoError(t, err)
	require.NotEmpty(t, ident.ID)
	require.Equal(t, "casey@example.com", ident.Email, "email must be normalized")

	got, err := s.Get(ctx, ident.ID)
	require.NoError(t, err)
	require.Equal(t, "Casey Kim", got.FullName)
	require.True(t, got.EmailConfirmed)
}

func TestCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Create(ctx, identity.CreateParams{Email: "dup@example.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = s.Create(ctx, identity.CreateParams{Email: "DUP@example.com", Password: "pw2"})
	require.ErrorIs(t, err, identity.ErrAlreadyExists)
}

func TestAuthenticateAndResolveToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	ident, err := s.Create(ctx, identity.CreateParams{Email: "login@example.com", Password: "hunter22"})
	require.NoError(t, err)

	token, err := s.Authenticate(ctx, "login@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := s.ResolveToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, ident.ID, id)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Create(ctx, identity.CreateParams{Email: "login@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, "login@example.com", "wrong")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "unknown@example.com", "hunter22")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestResolveTokenAfterDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	ident, err := s.Create(ctx, identity.CreateParams{Email: "gone@example.com", Password: "hunter22"})
	require.NoError(t, err)

	token, err := s.Authenticate(ctx, "gone@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, ident.ID))

	_, err = s.ResolveToken(ctx, token)
	require.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestDeleteUnknownIDIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.Delete(context.Background(), "no-such-id"))
}

func TestUpdatePassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	ident, err := s.Create(ctx, identity.CreateParams{Email: "reset@example.com", Password: "old-pass"})
	require.NoError(t, err)

	require.NoError(t, s.UpdatePassword(ctx, ident.ID, "new-pass"))

	_, err = s.Authenticate(ctx, "reset@example.com", "old-pass")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = s.Authenticate(ctx, "reset@example.com", "new-pass")
	require.NoError(t, err)

	err = s.UpdatePassword(ctx, "no-such-id", "whatever")
	require.ErrorIs(t, err, identity.ErrNotFound)
}
