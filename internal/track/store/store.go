package store

import (
	"context"
	"errors"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable, and to actively stop callers from accidentally nesting
// transactions.
type Store interface {
	Users() Users
	Teams() Teams
	Projects() Projects
	Tasks() Tasks
	Entries() Entries
	Invitations() Invitations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., accepting
	// an invitation). The caller MUST call Commit() or Rollback() on the
	// returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// EntryFilter narrows ListEntries. Zero fields are ignored; To is exclusive.
type EntryFilter struct {
	TeamID    string
	ProjectID string
	UserID    string
	From      time.Time
	To        time.Time
	// Running limits the result to entries with no end time.
	Running bool
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserBySubject looks a user up by the identity provider subject.
	GetUserBySubject(ctx context.Context, subject string) (domain.User, error)

	// GetUserByEmail is used to bind accepted invitations to accounts.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUserName mutates the display name and bumps updated_at.
	UpdateUserName(ctx context.Context, userID string, name string) error

	// DeleteUser cascades to team memberships and time entries (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Teams interface {
	// GetTeamByID returns a team by id.
	GetTeamByID(ctx context.Context, id string) (domain.Team, error)

	// ListTeamsForUser returns the teams a user is a member of, newest first.
	ListTeamsForUser(ctx context.Context, userID string) ([]domain.Team, error)

	// CreateTeam inserts a new team.
	CreateTeam(ctx context.Context, t domain.Team) error

	// UpdateTeamName mutates the team name and bumps updated_at.
	UpdateTeamName(ctx context.Context, teamID string, name string) error

	// DeleteTeam cascades to memberships, projects and entries (per schema).
	DeleteTeam(ctx context.Context, teamID string) error

	// AddMember inserts a membership row. Duplicate (team, user) pairs
	// return ErrAlreadyExists.
	AddMember(ctx context.Context, m domain.TeamMember) error

	// GetMember returns the membership of a user in a team.
	GetMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error)

	// ListMembers returns all members of a team with joined user fields,
	// ordered by join date.
	ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)

	// UpdateMemberRole changes a member's role within a team.
	UpdateMemberRole(ctx context.Context, teamID, userID string, role domain.Role) error

	// RemoveMember deletes a membership row.
	RemoveMember(ctx context.Context, teamID, userID string) error

	// CountAdmins returns the number of admins in a team. Used to refuse
	// demoting or removing the last admin.
	CountAdmins(ctx context.Context, teamID string) (int, error)
}

type Projects interface {
	GetProjectByID(ctx context.Context, id string) (domain.Project, error)

	// ListProjectsForTeam returns a team's projects ordered by name.
	// Archived projects are included; callers filter if they care.
	ListProjectsForTeam(ctx context.Context, teamID string) ([]domain.Project, error)

	CreateProject(ctx context.Context, p domain.Project) error

	// UpdateProject mutates name, description and archived flag.
	UpdateProject(ctx context.Context, p domain.Project) error

	// DeleteProject cascades to tasks and nulls task references on entries.
	DeleteProject(ctx context.Context, projectID string) error
}

type Tasks interface {
	GetTaskByID(ctx context.Context, id string) (domain.Task, error)

	// ListTasksForProject returns a project's tasks, open ones first.
	ListTasksForProject(ctx context.Context, projectID string) ([]domain.Task, error)

	CreateTask(ctx context.Context, t domain.Task) error

	// UpdateTask mutates name and done flag.
	UpdateTask(ctx context.Context, t domain.Task) error

	DeleteTask(ctx context.Context, taskID string) error
}

type Entries interface {
	// GetEntryByID returns an entry with joined project/user/task names.
	GetEntryByID(ctx context.Context, id string) (domain.TimeEntry, error)

	// GetRunningEntry returns the user's sole open entry in a team, or
	// ErrNotFound when nothing is running.
	GetRunningEntry(ctx context.Context, teamID, userID string) (domain.TimeEntry, error)

	CreateEntry(ctx context.Context, e domain.TimeEntry) error

	// UpdateEntry mutates the writable fields: project, task, start/end,
	// break, note.
	UpdateEntry(ctx context.Context, e domain.TimeEntry) error

	// StopEntry sets the end time on a running entry.
	StopEntry(ctx context.Context, entryID string, end time.Time) error

	DeleteEntry(ctx context.Context, entryID string) error

	// ListEntries returns entries matching the filter with joined
	// project/user/task names, newest start first.
	ListEntries(ctx context.Context, f EntryFilter) ([]domain.TimeEntry, error)
}

type Invitations interface {
	// CreateInvitation inserts a new invitation. The token column is unique;
	// a duplicate token returns ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetInvitationByToken looks an invitation up by the full encoded token,
	// which is the canonical key clients present back.
	GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error)

	// GetPendingInvitation returns the open invitation for an email in a
	// team, if any. Pending means unaccepted and not yet expired at now;
	// lapsed rows do not block a fresh invite. Used to avoid stacking
	// duplicate invites.
	GetPendingInvitation(ctx context.Context, teamID, email string, now time.Time) (domain.Invitation, error)

	// ListInvitationsForTeam returns a team's invitations, newest first.
	ListInvitationsForTeam(ctx context.Context, teamID string) ([]domain.Invitation, error)

	// MarkInvitationAccepted records who accepted and when.
	MarkInvitationAccepted(ctx context.Context, id, userID string, at time.Time) error

	DeleteInvitation(ctx context.Context, id string) error

	// DeleteExpiredInvitations removes unaccepted invitations whose expiry
	// is before cutoff, returning the number removed.
	DeleteExpiredInvitations(ctx context.Context, cutoff time.Time) (int64, error)
}
