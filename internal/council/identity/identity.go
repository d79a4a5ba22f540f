// Package identity abstracts the credential provider that owns login
// identities. The council database never stores credentials; it only keeps
// profile rows pointing at identities held here. There is no shared
// transaction between the two stores, so callers that create an identity and
// then fail to persist the matching profile must compensate by deleting the
// identity again.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("identity not found")
	ErrAlreadyExists      = errors.New("identity already exists")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Identity is a credential-bearing login account.
type Identity struct {
	ID             string
	Email          string
	EmailConfirmed bool
	FullName       string
	StudentID      string
	CreatedAt      time.Time
}

// CreateParams carries everything needed to provision a new identity.
type CreateParams struct {
	Email          string
	Password       string
	EmailConfirmed bool
	FullName       string
	StudentID      string
}

// Store is the provider-facing interface. Implementations may call out to a
// remote vendor, so every method takes a context and can fail with transport
// errors in addition to the sentinels above.
type Store interface {
	// Create provisions a new identity. Email collisions return
	// ErrAlreadyExists.
	Create(ctx context.Context, params CreateParams) (Identity, error)

	// Delete removes an identity. Deleting an unknown id is not an error,
	// so compensation paths can retry safely.
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (Identity, error)
	List(ctx context.Context) ([]Identity, error)

	// ResolveToken validates a session token and returns the identity id
	// it belongs to.
	ResolveToken(ctx context.Context, token string) (string, error)

	// Authenticate verifies credentials and mints a session token.
	Authenticate(ctx context.Context, email, password string) (string, error)

	UpdatePassword(ctx context.Context, id, password string) error
}
