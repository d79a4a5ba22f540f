package domain

import "time"

// AccountKind classifies a provisioned account.
type AccountKind string

const (
	AccountStudent AccountKind = "student"
	AccountTeacher AccountKind = "teacher"
	AccountOther   AccountKind = "other"
)

// Valid reports whether the kind is one of the known values.
func (k AccountKind) Valid() bool {
	switch k {
	case AccountStudent, AccountTeacher, AccountOther:
		return true
	}
	return false
}

// RegistrationRequest is a pending, unapproved application for membership.
// It is created by intake, and consumed by approval or rejection; it is
// never mutated in place.
type RegistrationRequest struct {
	ID          string
	FullName    string
	AccountKind AccountKind
	StudentID   string // required for student kind, exactly 5 digits
	Email       string // required for non-student kinds, optional for students
	Password    string // required for non-student kinds
	Year        int    // cohort reference, required for student kind
	CreatedAt   time.Time
}
