package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/slogx"
)

// AuthzService resolves bearer tokens and gates admin-only operations.
type AuthzService struct {
	Store    store.Store
	Identity identity.Store
}

// AuthorizeAdmin resolves the bearer token and requires the caller's
// profile to carry the admin role. The returned profile identifies the
// actor for audit attribution.
//
// Only the role is checked here. The approved and disabled flags are not
// re-evaluated for admins; a profile that holds the admin role keeps gate
// access until the role itself is revoked.
func (s *AuthzService) AuthorizeAdmin(ctx context.Context, bearerToken string) (domain.Profile, error) {
	if bearerToken == "" {
		return domain.Profile{}, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	identityID, err := s.Identity.ResolveToken(ctx, bearerToken)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: invalid session", ErrUnauthorized)
	}

	profile, err := s.Store.Profiles().GetProfileByIdentityID(ctx, identityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, fmt.Errorf("%w: no profile for identity", ErrForbidden)
		}
		slogx.FromContext(ctx).Error("failed to load profile for authorization",
			slog.String("identity_id", identityID),
			slog.Any("error", err),
		)
		return domain.Profile{}, err
	}

	if profile.Role != domain.RoleAdmin {
		return domain.Profile{}, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return profile, nil
}

// Login authenticates credentials and returns a session token. Unlike the
// admin gate, login does enforce the approved and disabled flags.
func (s *AuthzService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	token, err := s.Identity.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		slogx.FromContext(ctx).Error("authentication failed", slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	identityID, err := s.Identity.ResolveToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: invalid session", ErrUnauthorized)
	}

	profile, err := s.Store.Profiles().GetProfileByIdentityID(ctx, identityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: no profile for identity", ErrForbidden)
		}
		return "", err
	}
	if !profile.Approved {
		return "", fmt.Errorf("%w: profile is not approved", ErrForbidden)
	}
	if profile.Disabled {
		return "", fmt.Errorf("%w: profile is disabled", ErrForbidden)
	}
	return token, nil
}
