package domain

import "time"

// Cohort is an admissible membership year. Accounts may only be created
// against a year that exists and is not closed.
type Cohort struct {
	Year      int
	Closed    bool
	CreatedAt time.Time
}
