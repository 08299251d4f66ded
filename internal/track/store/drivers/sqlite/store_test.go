package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	u := domain.User{
		ID:        idx.New().String(),
		Subject:   "idp|" + email,
		Email:     email,
		Name:      "Test User",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func seedTeam(t *testing.T, s *Store, owner domain.User) domain.Team {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	team := domain.Team{
		ID:        idx.New().String(),
		Name:      "Test Team",
		CreatedBy: owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ctx := context.Background()
	require.NoError(t, s.Teams().CreateTeam(ctx, team))
	require.NoError(t, s.Teams().AddMember(ctx, domain.TeamMember{
		TeamID: team.ID, UserID: owner.ID, Role: domain.RoleAdmin, JoinedAt: now,
	}))
	return team
}

func seedProject(t *testing.T, s *Store, team domain.Team, owner domain.User, name string) domain.Project {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	p := domain.Project{
		ID:        idx.New().String(),
		TeamID:    team.ID,
		Name:      name,
		CreatedBy: owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Projects().CreateProject(context.Background(), p))
	return p
}

func TestUsersRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice@example.com")

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	got, err = s.Users().GetUserBySubject(ctx, u.Subject)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	require.NoError(t, s.Users().UpdateUserName(ctx, u.ID, "Alice"))
	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Name)
}

func TestTeamMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	team := seedTeam(t, s, alice)

	require.NoError(t, s.Teams().AddMember(ctx, domain.TeamMember{
		TeamID: team.ID, UserID: bob.ID, Role: domain.RoleMember, JoinedAt: time.Now().UTC(),
	}))

	// Duplicate membership is rejected.
	err := s.Teams().AddMember(ctx, domain.TeamMember{
		TeamID: team.ID, UserID: bob.ID, Role: domain.RoleMember, JoinedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	members, err := s.Teams().ListMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "alice@example.com", members[0].UserEmail)
	require.True(t, members[0].IsAdmin())

	n, err := s.Teams().CountAdmins(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, s.Teams().UpdateMemberRole(ctx, team.ID, bob.ID, domain.RoleAdmin))
	n, err = s.Teams().CountAdmins(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.NoError(t, s.Teams().RemoveMember(ctx, team.ID, bob.ID))
	_, err = s.Teams().GetMember(ctx, team.ID, bob.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	teams, err := s.Teams().ListTeamsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
}

func TestEntriesFilterAndJoins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	team := seedTeam(t, s, alice)
	projA := seedProject(t, s, team, alice, "Apollo")
	projB := seedProject(t, s, team, alice, "Borealis")

	now := time.Now().UTC().Truncate(time.Second)
	mkEntry := func(p domain.Project, start time.Time, end *time.Time) domain.TimeEntry {
		e := domain.TimeEntry{
			ID:        idx.New().String(),
			TeamID:    team.ID,
			ProjectID: p.ID,
			UserID:    alice.ID,
			StartTime: start,
			EndTime:   end,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, s.Entries().CreateEntry(ctx, e))
		return e
	}

	earlyEnd := now.Add(-23 * time.Hour)
	mkEntry(projA, now.Add(-24*time.Hour), &earlyEnd)
	lateEnd := now.Add(-1 * time.Hour)
	mkEntry(projB, now.Add(-2*time.Hour), &lateEnd)
	running := mkEntry(projA, now.Add(-30*time.Minute), nil)

	all, err := s.Entries().ListEntries(ctx, store.EntryFilter{TeamID: team.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, running.ID, all[0].ID, "newest start first")
	require.Equal(t, "Apollo", all[0].ProjectName)
	require.Equal(t, "Test User", all[0].UserName)

	apollo, err := s.Entries().ListEntries(ctx, store.EntryFilter{TeamID: team.ID, ProjectID: projA.ID})
	require.NoError(t, err)
	require.Len(t, apollo, 2)

	recent, err := s.Entries().ListEntries(ctx, store.EntryFilter{
		TeamID: team.ID,
		From:   now.Add(-3 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, recent, 2)

	open, err := s.Entries().ListEntries(ctx, store.EntryFilter{TeamID: team.ID, Running: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, running.ID, open[0].ID)

	got, err := s.Entries().GetRunningEntry(ctx, team.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, running.ID, got.ID)
	require.True(t, got.IsRunning())

	// Only one open entry per user per team.
	err = s.Entries().CreateEntry(ctx, domain.TimeEntry{
		ID: idx.New().String(), TeamID: team.ID, ProjectID: projB.ID,
		UserID: alice.ID, StartTime: now, CreatedAt: now, UpdatedAt: now,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.Entries().StopEntry(ctx, running.ID, now))
	_, err = s.Entries().GetRunningEntry(ctx, team.ID, alice.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Stopping an already-stopped entry is a no-op miss.
	require.ErrorIs(t, s.Entries().StopEntry(ctx, running.ID, now), store.ErrNotFound)
}

func TestInvitationsLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	team := seedTeam(t, s, alice)

	now := time.Now().UTC().Truncate(time.Second)
	inv := domain.Invitation{
		ID:        idx.New().String(),
		TeamID:    team.ID,
		Email:     "carol@example.com",
		Token:     "encoded-token-1",
		Role:      domain.RoleMember,
		InvitedBy: alice.ID,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	// Token column is unique.
	dup := inv
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Invitations().CreateInvitation(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Invitations().GetInvitationByToken(ctx, "encoded-token-1")
	require.NoError(t, err)
	require.Equal(t, inv.ID, got.ID)
	require.False(t, got.Accepted())

	pending, err := s.Invitations().GetPendingInvitation(ctx, team.ID, "carol@example.com", now)
	require.NoError(t, err)
	require.Equal(t, inv.ID, pending.ID)

	carol := seedUser(t, s, "carol@example.com")
	require.NoError(t, s.Invitations().MarkInvitationAccepted(ctx, inv.ID, carol.ID, now))

	got, err = s.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Accepted())
	require.Equal(t, carol.ID, got.AcceptedBy)

	// Accepting twice is a miss.
	require.ErrorIs(t, s.Invitations().MarkInvitationAccepted(ctx, inv.ID, carol.ID, now), store.ErrNotFound)

	_, err = s.Invitations().GetPendingInvitation(ctx, team.ID, "carol@example.com", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Expired sweep leaves accepted rows alone.
	expired := domain.Invitation{
		ID:        idx.New().String(),
		TeamID:    team.ID,
		Email:     "dave@example.com",
		Token:     "encoded-token-2",
		Role:      domain.RoleMember,
		InvitedBy: alice.ID,
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-8 * 24 * time.Hour),
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, expired))

	// A lapsed invitation is not pending anymore.
	_, err = s.Invitations().GetPendingInvitation(ctx, team.ID, "dave@example.com", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := s.Invitations().DeleteExpiredInvitations(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = s.Invitations().GetInvitationByID(ctx, expired.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice@example.com")
	bob := seedUser(t, s, "bob@example.com")
	team := seedTeam(t, s, alice)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Teams().AddMember(ctx, domain.TeamMember{
			TeamID: team.ID, UserID: bob.ID,
			Role: domain.RoleMember, JoinedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	members, err := s.Teams().ListMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1, "membership insert must have rolled back")
}
