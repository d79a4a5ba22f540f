package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yplabs/council/internal/council/audit"
	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/slogx"
)

// CohortService manages the registry of admissible membership years.
type CohortService struct {
	Store store.Store
	Audit audit.Sink
}

// ListYears returns all registered years, newest first.
func (s *CohortService) ListYears(ctx context.Context) ([]domain.Cohort, error) {
	return s.Store.Cohorts().ListCohorts(ctx)
}

// AddYear registers a new membership year. Duplicate years are rejected.
func (s *CohortService) AddYear(ctx context.Context, year int, closed bool) error {
	if year <= 0 {
		return fmt.Errorf("%w: year must be a positive integer", ErrValidation)
	}

	err := s.Store.Cohorts().CreateCohort(ctx, domain.Cohort{
		Year:      year,
		Closed:    closed,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("%w: year %d is already registered", ErrConflict, year)
		}
		slogx.FromContext(ctx).Error("failed to create cohort",
			slog.Int("year", year),
			slog.Any("error", err),
		)
		return err
	}

	s.Audit.Record(ctx, audit.Event{
		Action: "year.add",
		Actor:  ActorFromContext(ctx),
		Target: fmt.Sprintf("%d", year),
	})
	return nil
}
