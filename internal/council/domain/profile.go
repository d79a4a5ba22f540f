package domain

import "time"

// Role of a provisioned member.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Profile is the organization's record of a provisioned member, linked 1:1
// to a credential-bearing identity. IdentityID is unique across profiles;
// the identity itself is owned by the identity store, the profile only holds
// the back-reference.
type Profile struct {
	ID          string
	IdentityID  string
	FullName    string
	AccountKind AccountKind
	StudentID   string
	Year        int
	Role        Role
	// Approved=false makes the profile inert for every purpose except
	// existing. Disabled=true revokes access regardless of Approved.
	Approved  bool
	Disabled  bool
	CreatedAt time.Time
}
