package domain

import "time"

// Invitation records an email invite to join a team. Token holds the full
// encoded signed token exactly as embedded in the invite link; it is the
// canonical lookup key at acceptance time. The decoded raw token inside it
// is never used for lookups.
type Invitation struct {
	ID         string
	TeamID     string
	Email      string
	Token      string
	Role       Role
	InvitedBy  string
	ExpiresAt  time.Time
	AcceptedAt *time.Time
	AcceptedBy string
	CreatedAt  time.Time
}

// Accepted reports whether the invitation has been consumed.
func (i Invitation) Accepted() bool { return i.AcceptedAt != nil }

// Expired reports whether the invitation is past its expiry at now.
func (i Invitation) Expired(now time.Time) bool { return now.After(i.ExpiresAt) }
