package domain

import "strings"

// StudentEmailDomain is the fixed suffix for synthesized student logins.
// It must never change once accounts exist: login, registration, and
// provisioning all derive the same address from the student id, and a new
// suffix would orphan every previously provisioned student account.
const StudentEmailDomain = "students.yplabs"

// SynthesizeEmail derives the deterministic login address for a student
// account that has no real email. Idempotent and side-effect free.
func SynthesizeEmail(studentID string) string {
	return strings.TrimSpace(studentID) + "@" + StudentEmailDomain
}
