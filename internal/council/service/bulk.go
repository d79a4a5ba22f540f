package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yplabs/council/internal/council/audit"
	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/internal/council/metrics"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/idx"
	"github.com/yplabs/council/pkg/slogx"
)

// admissibleYearWindow is the number of most-recent open years bulk
// provisioning may target. Fixed policy, not configuration.
const admissibleYearWindow = 2

// bulkParallelism bounds concurrent per-item provisioning. Items are
// independent, so ordering of side effects does not matter.
const bulkParallelism = 4

// BulkService provisions batches of accounts with per-item isolation: one
// item's failure never aborts the batch or its siblings. Each item runs the
// same create-identity-then-insert-profile saga as approval.
type BulkService struct {
	Store    store.Store
	Identity identity.Store
	Audit    audit.Sink
}

// BulkItem describes one account to provision.
type BulkItem struct {
	FullName    string
	AccountKind domain.AccountKind
	StudentID   string
	Email       string
	Password    string
	Year        int
	Role        domain.Role
}

// BulkResult is the per-item outcome. Results are positionally aligned with
// the input batch.
type BulkResult struct {
	Success    bool
	IdentityID string
	Email      string
	Err        string
}

// ProvisionBatch validates and provisions every item independently and
// returns one result per input item, in input order.
func (s *BulkService) ProvisionBatch(ctx context.Context, items []BulkItem) ([]BulkResult, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	// The admissible-years window is computed once per batch. A year
	// closed mid-batch by a concurrent admin does not retroactively
	// invalidate items validated against this snapshot.
	window, err := s.Store.Cohorts().ListOpenYears(ctx, admissibleYearWindow)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load admissible years", slog.Any("error", err))
		return nil, err
	}

	results := make([]BulkResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkParallelism)
	for i, item := range items {
		g.Go(func() error {
			results[i] = s.provisionOne(gctx, item, window)
			// Item failures land in the result slice, never here; an
			// error return would cancel sibling items.
			return nil
		})
	}
	g.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
			metrics.BulkItems.WithLabelValues("success").Inc()
		} else {
			metrics.BulkItems.WithLabelValues("failure").Inc()
		}
	}

	s.Audit.Record(ctx, audit.Event{
		Action: "accounts.bulk",
		Actor:  ActorFromContext(ctx),
		Detail: fmt.Sprintf("%d of %d items succeeded", succeeded, len(items)),
	})
	return results, nil
}

func (s *BulkService) provisionOne(ctx context.Context, item BulkItem, window []int) BulkResult {
	log := slogx.FromContext(ctx)

	// 1. Structural validation.
	if strings.TrimSpace(item.FullName) == "" {
		return failure("full name is required")
	}
	if item.Year <= 0 {
		return failure("year must be a positive integer")
	}

	// 2. Year rules: must exist, be open, and sit inside the window.
	cohort, err := s.Store.Cohorts().GetCohort(ctx, item.Year)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return failure("selected year does not exist")
		}
		log.Error("failed to load cohort", slog.Int("year", item.Year), slog.Any("error", err))
		return failure("failed to verify selected year")
	}
	if cohort.Closed {
		return failure("selected year is closed")
	}
	if !containsYear(window, item.Year) {
		return failure("year not in allowed selection (only latest 2 active years allowed)")
	}

	// 3. Kind branch: students synthesize credentials, everyone else
	// supplies them verbatim.
	email := item.Email
	password := item.Password
	switch item.AccountKind {
	case domain.AccountStudent:
		item.StudentID = strings.TrimSpace(item.StudentID)
		if !studentIDPattern.MatchString(item.StudentID) {
			return failure("student id must be exactly 5 digits")
		}
		email = domain.SynthesizeEmail(item.StudentID)
		password = item.StudentID
	case domain.AccountTeacher, domain.AccountOther:
		if email == "" || !strings.Contains(email, "@") {
			return failure("a valid email is required")
		}
		if password == "" {
			return failure("password is required")
		}
	default:
		return failure(fmt.Sprintf("unknown account kind %q", item.AccountKind))
	}

	role := item.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return failure(fmt.Sprintf("unknown role %q", role))
	}

	// 4. Create the identity.
	identCtx, cancel := context.WithTimeout(ctx, identityCallTimeout)
	ident, err := s.Identity.Create(identCtx, identity.CreateParams{
		Email:          email,
		Password:       password,
		EmailConfirmed: true,
		FullName:       item.FullName,
		StudentID:      item.StudentID,
	})
	cancel()
	if err != nil {
		log.Error("bulk identity creation failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
		return failure(err.Error())
	}

	// 5. Insert the profile; compensate on failure.
	profile := domain.Profile{
		ID:          idx.New().String(),
		IdentityID:  ident.ID,
		FullName:    strings.TrimSpace(item.FullName),
		AccountKind: item.AccountKind,
		StudentID:   item.StudentID,
		Year:        item.Year,
		Role:        role,
		Approved:    true,
		Disabled:    false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Profiles().CreateProfile(ctx, profile); err != nil {
		log.Error("bulk profile insert failed, rolling back identity",
			slog.String("identity_id", ident.ID),
			slog.Any("error", err),
		)
		s.rollbackIdentity(ctx, ident.ID)
		return failure(err.Error())
	}

	metrics.AccountsProvisioned.WithLabelValues(string(item.AccountKind), "bulk").Inc()
	return BulkResult{Success: true, IdentityID: ident.ID, Email: email}
}

// rollbackIdentity best-effort deletes an identity after a failed profile
// insert. Failures are logged and counted only.
func (s *BulkService) rollbackIdentity(ctx context.Context, identityID string) {
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

func failure(msg string) BulkResult {
	return BulkResult{Err: msg}
}

func containsYear(window []int, year int) bool {
	for _, y := range window {
		if y == year {
			return true
		}
	}
	return false
}
