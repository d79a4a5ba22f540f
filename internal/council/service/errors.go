package service

import (
	"context"
	"errors"
)

var (
	// ErrValidation marks caller input that fails structural checks.
	ErrValidation = errors.New("invalid input")

	// ErrConflict marks an operation that collides with existing state,
	// such as a duplicate registration or an already-registered year.
	ErrConflict = errors.New("conflicting state")

	// ErrUnauthorized marks a missing or unusable session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks a valid session that lacks the admin role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks a failure talking to the identity provider.
	ErrUpstream = errors.New("identity provider failure")

	// ErrEmptyBatch rejects bulk provisioning calls with no items.
	ErrEmptyBatch = errors.New("empty batch")
)

type actorKey struct{}

// WithActor stamps the acting admin's identity id into the context so
// downstream services and audit sinks can attribute the operation.
func WithActor(ctx context.Context, identityID string) context.Context {
	return context.WithValue(ctx, actorKey{}, identityID)
}

// ActorFromContext returns the acting admin's identity id, or "" when the
// operation has no authenticated actor.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}
