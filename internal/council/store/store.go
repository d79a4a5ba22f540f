package store

import (
	"context"
	"errors"

	"github.com/yplabs/council/internal/council/domain"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when an insert violates a uniqueness
	// constraint.
	ErrAlreadyExists = errors.New("record already exists")
)

// Store is the root persistence interface for the council database. It
// groups the per-aggregate repositories and lifecycle operations; drivers
// implement all of them against one backing database.
type Store interface {
	Requests() Requests
	Profiles() Profiles
	Cohorts() Cohorts

	ApplyMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Requests persists pending registration requests.
type Requests interface {
	CreateRequest(ctx context.Context, req domain.RegistrationRequest) error
	GetRequestByID(ctx context.Context, id string) (domain.RegistrationRequest, error)

	// ListRequests returns all pending requests, oldest first.
	ListRequests(ctx context.Context) ([]domain.RegistrationRequest, error)

	// DeleteRequest removes a request. Deleting a request that does not
	// exist is not an error.
	DeleteRequest(ctx context.Context, id string) error

	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProfileUpdate carries the mutable profile flags. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Role     *domain.Role
	Approved *bool
	Disabled *bool
}

// Profiles persists member profiles.
type Profiles interface {
	CreateProfile(ctx context.Context, p domain.Profile) error
	GetProfileByIdentityID(ctx context.Context, identityID string) (domain.Profile, error)

	// ListProfiles returns all profiles, newest first.
	ListProfiles(ctx context.Context) ([]domain.Profile, error)

	UpdateProfileFlags(ctx context.Context, identityID string, update ProfileUpdate) error
	DeleteProfileByIdentityID(ctx context.Context, identityID string) error
}

// Cohorts persists membership years.
type Cohorts interface {
	CreateCohort(ctx context.Context, c domain.Cohort) error
	GetCohort(ctx context.Context, year int) (domain.Cohort, error)

	// ListCohorts returns all years, newest first.
	ListCohorts(ctx context.Context) ([]domain.Cohort, error)

	// ListOpenYears returns the most recent non-closed years, newest
	// first, capped at limit.
	ListOpenYears(ctx context.Context, limit int) ([]int, error)
}
