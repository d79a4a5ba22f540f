package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yplabs/council/internal/council/audit"
	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/internal/council/metrics"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/idx"
	"github.com/yplabs/council/pkg/slogx"
)

// identityCallTimeout bounds each call to the identity provider so a stalled
// upstream fails the operation instead of hanging it.
const identityCallTimeout = 30 * time.Second

// ApprovalService promotes pending requests into provisioned accounts. The
// identity create and profile insert are two independent writes with no
// shared transaction; a failed profile insert is compensated by deleting the
// just-created identity.
type ApprovalService struct {
	Store    store.Store
	Identity identity.Store
	Audit    audit.Sink
}

// Approve provisions the account described by the request and deletes the
// request. Returns the new identity id.
func (s *ApprovalService) Approve(ctx context.Context, requestID string) (string, error) {
	log := slogx.FromContext(ctx)

	// 1. Load the request.
	req, err := s.Store.Requests().GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: registration request %s", ErrNotFound, requestID)
		}
		log.Error("failed to load registration request", slog.Any("error", err))
		return "", err
	}

	// 2. Derive login email and password. Students get a synthesized
	// email when none was given, and their student id as a temporary
	// password. This weak default is deliberate; the owner is expected
	// to reset it after first login.
	email := req.Email
	password := req.Password
	if req.AccountKind == domain.AccountStudent {
		if email == "" {
			email = domain.SynthesizeEmail(req.StudentID)
		}
		password = req.StudentID
	}

	// 3. Create the identity. On failure nothing external exists yet, so
	// the request stays intact for retry.
	ident, err := s.createIdentity(ctx, identity.CreateParams{
		Email:          email,
		Password:       password,
		EmailConfirmed: true,
		FullName:       req.FullName,
		StudentID:      req.StudentID,
	})
	if err != nil {
		log.Error("identity creation failed",
			slog.String("request_id", req.ID),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	// 4. Insert the profile. On failure, compensate by deleting the
	// identity so no credential exists without a profile; the rollback's
	// own failure is logged, never surfaced.
	profile := domain.Profile{
		ID:          idx.New().String(),
		IdentityID:  ident.ID,
		FullName:    req.FullName,
		AccountKind: req.AccountKind,
		StudentID:   req.StudentID,
		Year:        req.Year,
		Role:        domain.RoleMember,
		Approved:    true,
		Disabled:    false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Profiles().CreateProfile(ctx, profile); err != nil {
		log.Error("profile insert failed, rolling back identity",
			slog.String("request_id", req.ID),
			slog.String("identity_id", ident.ID),
			slog.Any("error", err),
		)
		s.rollbackIdentity(ctx, ident.ID)
		return "", err
	}

	// 5. Delete the request. The account is fully provisioned at this
	// point, so a failed delete is a cleanup nuisance, not a failure.
	if err := s.Store.Requests().DeleteRequest(ctx, req.ID); err != nil {
		log.Error("failed to delete approved registration request",
			slog.String("request_id", req.ID),
			slog.Any("error", err),
		)
	}

	metrics.AccountsProvisioned.WithLabelValues(string(req.AccountKind), "approve").Inc()
	s.Audit.Record(ctx, audit.Event{
		Action: "request.approve",
		Actor:  ActorFromContext(ctx),
		Target: req.ID,
		Detail: "identity " + ident.ID,
	})
	log.Info("registration request approved",
		slog.String("request_id", req.ID),
		slog.String("identity_id", ident.ID),
	)
	return ident.ID, nil
}

// Reject deletes a pending request. Rejecting an absent request is a no-op.
func (s *ApprovalService) Reject(ctx context.Context, requestID string) error {
	if err := s.Store.Requests().DeleteRequest(ctx, requestID); err != nil {
		slogx.FromContext(ctx).Error("failed to delete registration request",
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return err
	}

	s.Audit.Record(ctx, audit.Event{
		Action: "request.reject",
		Actor:  ActorFromContext(ctx),
		Target: requestID,
	})
	return nil
}

func (s *ApprovalService) createIdentity(ctx context.Context, params identity.CreateParams) (identity.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, identityCallTimeout)
	defer cancel()
	return s.Identity.Create(ctx, params)
}

// rollbackIdentity best-effort deletes an identity after a failed profile
// insert. Failures are logged and counted only.
func (s *ApprovalService) rollbackIdentity(ctx context.Context, identityID string) {
	metrics.ProvisioningRollbacks.Inc()

	ctx, cancel := context.WithTimeout(ctx, identityCallTimeout)
	defer cancel()
	if err := s.Identity.Delete(ctx, identityID); err != nil {
		slogx.FromContext(ctx).Error("compensating identity delete failed",
			slog.String("identity_id", identityID),
			slog.Any("error", err),
		)
	}
}
