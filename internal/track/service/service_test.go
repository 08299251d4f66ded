package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/invite"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/internal/track/store/drivers/sqlite"
)

const testInviteSecret = "test-invite-secret"

type fixture struct {
	Store       store.Store
	Users       *UserService
	Teams       *TeamService
	Projects    *ProjectService
	Tasks       *TaskService
	Entries     *EntryService
	Invitations *InvitationService
	Reports     *ReportService
	Codec       *invite.Codec
}

func newFixture(t *testing.T, codecOpts ...invite.Option) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	codec, err := invite.NewCodec(testInviteSecret, codecOpts...)
	require.NoError(t, err)

	teams := &TeamService{Store: s}
	projects := &ProjectService{Store: s, Teams: teams}
	f := &fixture{
		Store:       s,
		Users:       &UserService{Store: s},
		Teams:       teams,
		Projects:    projects,
		Tasks:       &TaskService{Store: s, Teams: teams, Projects: projects},
		Entries:     &EntryService{Store: s, Teams: teams},
		Invitations: &InvitationService{Store: s, Teams: teams, Codec: codec},
		Reports:     &ReportService{Store: s, Teams: teams, Projects: projects},
		Codec:       codec,
	}
	return f
}

func (f *fixture) user(t *testing.T, email string) domain.User {
	t.Helper()
	u, err := f.Users.Register(context.Background(), "idp|"+email, email, "User "+email)
	require.NoError(t, err)
	return u
}

func (f *fixture) team(t *testing.T, owner domain.User) domain.Team {
	t.Helper()
	team, err := f.Teams.Create(context.Background(), "Test Team", owner.ID)
	require.NoError(t, err)
	return team
}

func (f *fixture) project(t *testing.T, team domain.Team, owner domain.User, name string) domain.Project {
	t.Helper()
	p, err := f.Projects.Create(context.Background(), team.ID, owner.ID, name, "")
	require.NoError(t, err)
	return p
}

func TestUserRegisterIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.Users.Register(ctx, "idp|1", "Alice@Example.com", "Alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", first.Email, "email is normalised")

	again, err := f.Users.Register(ctx, "idp|1", "alice@example.com", "Alice Cooper")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, "Alice Cooper", again.Name, "name refreshes on re-register")

	_, err = f.Users.Register(ctx, "idp|2", "not-an-email", "Bob")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestTeamCreateMakesCreatorAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	team := f.team(t, alice)

	m, err := f.Teams.RequireMember(ctx, team.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, m.IsAdmin())

	outsider := f.user(t, "eve@example.com")
	_, err = f.Teams.Get(ctx, team.ID, outsider.ID)
	require.ErrorIs(t, err, ErrNotMember)
}

func TestTeamLastAdminProtection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	team := f.team(t, alice)
	require.NoError(t, f.Store.Teams().AddMember(ctx, domain.TeamMember{
		TeamID: team.ID, UserID: bob.ID, Role: domain.RoleMember, JoinedAt: time.Now().UTC(),
	}))

	// Sole admin cannot demote or remove themselves.
	require.ErrorIs(t, f.Teams.ChangeRole(ctx, team.ID, alice.ID, alice.ID, domain.RoleMember), ErrLastAdmin)
	require.ErrorIs(t, f.Teams.RemoveMember(ctx, team.ID, alice.ID, alice.ID), ErrLastAdmin)

	// Members cannot kick others, but may leave.
	require.ErrorIs(t, f.Teams.RemoveMember(ctx, team.ID, bob.ID, alice.ID), ErrNotAdmin)
	require.NoError(t, f.Teams.RemoveMember(ctx, team.ID, bob.ID, bob.ID))

	// With a second admin the original one may step down.
	require.NoError(t, f.Store.Teams().AddMember(ctx, domain.TeamMember{
		TeamID: team.ID, UserID: bob.ID, Role: domain.RoleAdmin, JoinedAt: time.Now().UTC(),
	}))
	require.NoError(t, f.Teams.ChangeRole(ctx, team.ID, alice.ID, alice.ID, domain.RoleMember))
}

func TestEntryStartStop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	team := f.team(t, alice)
	proj := f.project(t, team, alice, "Apollo")

	started, err := f.Entries.Start(ctx, team.ID, alice.ID, EntryInput{ProjectID: proj.ID})
	require.NoError(t, err)
	require.True(t, started.IsRunning())
	require.Equal(t, "Apollo", started.ProjectName)

	_, err = f.Entries.Start(ctx, team.ID, alice.ID, EntryInput{ProjectID: proj.ID})
	require.ErrorIs(t, err, ErrTimerAlreadyRunning)

	running, err := f.Entries.Running(ctx, team.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, started.ID, running.ID)

	stopped, err := f.Entries.Stop(ctx, team.ID, alice.ID)
	require.NoError(t, err)
	require.False(t, stopped.IsRunning())

	_, err = f.Entries.Stop(ctx, team.ID, alice.ID)
	require.ErrorIs(t, err, ErrNoRunningTimer)
}

func TestEntryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	team := f.team(t, alice)
	proj := f.project(t, team, alice, "Apollo")

	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)

	t.Run("end before start", func(t *testing.T) {
		_, err := f.Entries.Log(ctx, team.ID, alice.ID, EntryInput{
			ProjectID: proj.ID, StartTime: now, EndTime: &earlier,
		})
		require.ErrorIs(t, err, ErrInvalidEntryTimes)
	})

	t.Run("negative break", func(t *testing.T) {
		_, err := f.Entries.Log(ctx, team.ID, alice.ID, EntryInput{
			ProjectID: proj.ID, StartTime: earlier, EndTime: &now, BreakMinutes: -1,
		})
		require.ErrorIs(t, err, ErrInvalidBreak)
	})

	t.Run("foreign project", func(t *testing.T) {
		bob := f.user(t, "bob@example.com")
		otherTeam := f.team(t, bob)
		otherProj := f.project(t, otherTeam, bob, "Secret")

		_, err := f.Entries.Log(ctx, team.ID, alice.ID, EntryInput{
			ProjectID: otherProj.ID, StartTime: earlier, EndTime: &now,
		})
		require.ErrorIs(t, err, ErrProjectNotFound)
	})

	t.Run("task from another project", func(t *testing.T) {
		other := f.project(t, team, alice, "Borealis")
		task, err := f.Tasks.Create(ctx, other.ID, alice.ID, "Design")
		require.NoError(t, err)

		_, err = f.Entries.Log(ctx, team.ID, alice.ID, EntryInput{
			ProjectID: proj.ID, TaskID: &task.ID, StartTime: earlier, EndTime: &now,
		})
		require.ErrorIs(t, err, ErrTaskProjectMismatch)
	})
}

func TestEntryUpdateMovesProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	team := f.team(t, alice)
	apollo := f.project(t, team, alice, "Apollo")
	borealis := f.project(t, team, alice, "Borealis")
	task, err := f.Tasks.Create(ctx, borealis.ID, alice.ID, "Design")
	require.NoError(t, err)

	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	entry, err := f.Entries.Log(ctx, team.ID, alice.ID, EntryInput{
		ProjectID: apollo.ID, StartTime: start, EndTime: &now,
	})
	require.NoError(t, err)

	// Reassigning the entry persists both the new project and its task.
	updated, err := f.Entries.Update(ctx, entry.ID, alice.ID, EntryInput{
		ProjectID: borealis.ID, TaskID: &task.ID, StartTime: start, EndTime: &now,
	})
	require.NoError(t, err)
	require.Equal(t, borealis.ID, updated.ProjectID)
	require.Equal(t, "Borealis", updated.ProjectName)
	require.NotNil(t, updated.TaskID)
	require.Equal(t, task.ID, *updated.TaskID)

	// The reloaded row agrees.
	got, err := f.Store.Entries().GetEntryByID(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, borealis.ID, got.ProjectID)
}

func TestEntryOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	carol := f.user(t, "carol@example.com")
	team := f.team(t, alice)
	for _, u := range []domain.User{bob, carol} {
		require.NoError(t, f.Store.Teams().AddMember(ctx, domain.TeamMember{
			TeamID: team.ID, UserID: u.ID, Role: domain.RoleMember, JoinedAt: time.Now().UTC(),
		}))
	}
	proj := f.project(t, team, alice, "Apollo")

	now := time.Now().UTC()
	start := now.Add(-time.Hour)
	entry, err := f.Entries.Log(ctx, team.ID, bob.ID, EntryInput{
		ProjectID: proj.ID, StartTime: start, EndTime: &now,
	})
	require.NoError(t, err)

	// Another member cannot touch it.
	require.ErrorIs(t, f.Entries.Delete(ctx, entry.ID, carol.ID), ErrEntryNotYours)

	// The admin can.
	updated, err := f.Entries.Update(ctx, entry.ID, alice.ID, EntryInput{
		ProjectID: proj.ID, StartTime: start, EndTime: &now, BreakMinutes: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 10, updated.BreakMinutes)

	// So can the owner.
	require.NoError(t, f.Entries.Delete(ctx, entry.ID, bob.ID))
}
