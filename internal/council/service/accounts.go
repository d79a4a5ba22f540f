package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yplabs/council/internal/council/audit"
	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/cryptox"
	"github.com/yplabs/council/pkg/slogx"
)

// AccountService administers provisioned accounts: listing, flag updates,
// removal, and password resets.
type AccountService struct {
	Store    store.Store
	Identity identity.Store
	Audit    audit.Sink
}

// Account joins a profile with its identity's login email.
type Account struct {
	Profile domain.Profile
	Email   string
}

// ListAccounts returns all provisioned accounts, newest first, with each
// profile's login email attached.
func (s *AccountService) ListAccounts(ctx context.Context) ([]Account, error) {
	profiles, err := s.Store.Profiles().ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	identCtx, cancel := context.WithTimeout(ctx, identityCallTimeout)
	idents, err := s.Identity.List(identCtx)
	cancel()
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list identities", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	emails := make(map[string]string, len(idents))
	for _, ident := range idents {
		emails[ident.ID] = ident.Email
	}

	out := make([]Account, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, Account{Profile: p, Email: emails[p.IdentityID]})
	}
	return out, nil
}

// UpdateAccount mutates the role, approved, or disabled flags of a profile.
func (s *AccountService) UpdateAccount(ctx context.Context, identityID string, update store.ProfileUpdate) error {
	if update.Role != nil && !update.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, *update.Role)
	}

	if err := s.Store.Profiles().UpdateProfileFlags(ctx, identityID, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no account for identity %s", ErrNotFound, identityID)
		}
		return err
	}

	s.Audit.Record(ctx, audit.Event{
		Action: "account.update",
		Actor:  ActorFromContext(ctx),
		Target: identityID,
	})
	return nil
}

// DeleteAccount removes the profile and then best-effort deletes its
// identity. A failed identity delete leaves an orphan credential; that is
// logged and the operation still succeeds, since the profile is gone and
// the orphan cannot act as a member.
func (s *AccountService) DeleteAccount(ctx context.Context, identityID string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Profiles().DeleteProfileByIdentityID(ctx, identityID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no account for identity %s", ErrNotFound, identityID)
		}
		return err
	}

	identCtx, cancel := context.WithTimeout(ctx, identityCallTimeout)
	defer cancel()
	if err := s.Identity.Delete(identCtx, identityID); err != nil {
		log.Error("failed to delete identity for removed account",
			slog.String("identity_id", identityID),
			slog.Any("error", err),
		)
	}

	s.Audit.Record(ctx, audit.Event{
		Action: "account.delete",
		Actor:  ActorFromContext(ctx),
		Target: identityID,
	})
	return nil
}

// ResetPassword sets a new password on the account's identity. When no
// password is supplied a random one is generated. Returns the password that
// was set so the admin can hand it to the member.
func (s *AccountService) ResetPassword(ctx context.Context, identityID, password string) (string, error) {
	// The profile must exist; orphan identities are not member accounts.
	if _, err := s.Store.Profiles().GetProfileByIdentityID(ctx, identityID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: no account for identity %s", ErrNotFound, identityID)
		}
		return "", err
	}

	if password == "" {
		generated, err := cryptox.GeneratePassword()
		if err != nil {
			return "", err
		}
		password = generated
	}

	identCtx, cancel := context.WithTimeout(ctx, identityCallTimeout)
	defer cancel()
	if err := s.Identity.UpdatePassword(identCtx, identityID, password); err != nil {
		slogx.FromContext(ctx).Error("failed to reset password",
			slog.String("identity_id", identityID),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	s.Audit.Record(ctx, audit.Event{
		Action: "account.reset_password",
		Actor:  ActorFromContext(ctx),
		Target: identityID,
	})
	return password, nil
}
