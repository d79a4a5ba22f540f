package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/metrics"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/pkg/idx"
	"github.com/yplabs/council/pkg/slogx"
)

var studentIDPattern = regexp.MustCompile(`^\d{5}$`)

// IntakeService accepts and queues registration requests. Submissions are
// durable queue entries only; nothing is provisioned until an admin approves.
type IntakeService struct {
	Store store.Store
}

type SubmitParams struct {
	FullName    string
	AccountKind domain.AccountKind
	StudentID   string
	Email       string
	Password    string
	Year        int
}

// Submit validates and persists a pending registration request, returning
// its id.
func (s *IntakeService) Submit(ctx context.Context, params SubmitParams) (string, error) {
	log := slogx.FromContext(ctx)

	// 1. Structural validation, branched on account kind.
	if strings.TrimSpace(params.FullName) == "" {
		return "", fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if !params.AccountKind.Valid() {
		return "", fmt.Errorf("%w: unknown account kind %q", ErrValidation, params.AccountKind)
	}

	if params.AccountKind == domain.AccountStudent {
		params.StudentID = strings.TrimSpace(params.StudentID)
		if !studentIDPattern.MatchString(params.StudentID) {
			return "", fmt.Errorf("%w: student id must be exactly 5 digits", ErrValidation)
		}
		if params.Year <= 0 {
			return "", fmt.Errorf("%w: year must be a positive integer", ErrValidation)
		}
	} else {
		if params.Email == "" || !strings.Contains(params.Email, "@") {
			return "", fmt.Errorf("%w: a valid email is required", ErrValidation)
		}
		if params.Password == "" {
			return "", fmt.Errorf("%w: password is required", ErrValidation)
		}
	}

	// 2. Best-effort duplicate check. Check-then-insert is racy by
	// contract; two near-simultaneous submissions may both pass.
	if params.AccountKind == domain.AccountStudent {
		exists, err := s.Store.Requests().ExistsByStudentID(ctx, params.StudentID)
		if err != nil {
			log.Error("failed duplicate check by student id", slog.Any("error", err))
			return "", err
		}
		if exists {
			return "", fmt.Errorf("%w: a request for this student id already exists", ErrConflict)
		}
	} else {
		exists, err := s.Store.Requests().ExistsByEmail(ctx, params.Email)
		if err != nil {
			log.Error("failed duplicate check by email", slog.Any("error", err))
			return "", err
		}
		if exists {
			return "", fmt.Errorf("%w: a request for this email already exists", ErrConflict)
		}
	}

	// 3. Persist the request.
	req := domain.RegistrationRequest{
		ID:          idx.New().String(),
		FullName:    strings.TrimSpace(params.FullName),
		AccountKind: params.AccountKind,
		StudentID:   params.StudentID,
		Email:       params.Email,
		Password:    params.Password,
		Year:        params.Year,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Requests().CreateRequest(ctx, req); err != nil {
		log.Error("failed to persist registration request",
			slog.String("request_id", req.ID),
			slog.Any("error", err),
		)
		return "", err
	}

	metrics.RequestsSubmitted.Inc()
	log.Info("registration request submitted",
		slog.String("request_id", req.ID),
		slog.String("account_kind", string(req.AccountKind)),
	)
	return req.ID, nil
}

// ListRequests returns all pending requests, oldest first.
func (s *IntakeService) ListRequests(ctx context.Context) ([]domain.RegistrationRequest, error) {
	return s.Store.Requests().ListRequests(ctx)
}
