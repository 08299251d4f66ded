package domain

import "time"

// Role is a user's role within a single team. Roles are per-team, not
// global; the same user can be admin of one team and member of another.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type Team struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeamMember links a user to a team with a role.
type TeamMember struct {
	TeamID   string
	UserID   string
	Role     Role
	JoinedAt time.Time

	// Joined for member listings.
	UserName  string
	UserEmail string
}

// IsAdmin reports whether the membership carries team-admin rights.
func (m TeamMember) IsAdmin() bool { return m.Role == RoleAdmin }
