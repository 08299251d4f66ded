package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/idx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestStore spins up a throwaway postgres container. Skipped unless
// TALLY_TEST_POSTGRES=1 so unit runs stay docker-free; CI opts in.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("TALLY_TEST_POSTGRES") != "1" {
		t.Skip("set TALLY_TEST_POSTGRES=1 to run postgres driver tests")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "tally",
			"POSTGRES_PASSWORD": "tally",
			"POSTGRES_DB":       "tally_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://tally:tally@%s:%s/tally_test?sslmode=disable", host, port.Port())
	s, err := NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestPostgresRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	alice := domain.User{
		ID: idx.New().String(), Subject: "idp|alice", Email: "alice@example.com",
		Name: "Alice", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Users().CreateUser(ctx, alice))

	// Unique violations come back as the portable sentinel.
	dup := alice
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	team := domain.Team{
		ID: idx.New().String(), Name: "Team", CreatedBy: alice.ID,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Teams().CreateTeam(ctx, team))
	require.NoError(t, s.Teams().AddMember(ctx, domain.TeamMember{
		TeamID: team.ID, UserID: alice.ID, Role: domain.RoleAdmin, JoinedAt: now,
	}))

	proj := domain.Project{
		ID: idx.New().String(), TeamID: team.ID, Name: "Apollo",
		CreatedBy: alice.ID, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Projects().CreateProject(ctx, proj))

	running := domain.TimeEntry{
		ID: idx.New().String(), TeamID: team.ID, ProjectID: proj.ID,
		UserID: alice.ID, StartTime: now.Add(-time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Entries().CreateEntry(ctx, running))

	got, err := s.Entries().GetRunningEntry(ctx, team.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, running.ID, got.ID)
	require.Equal(t, "Apollo", got.ProjectName)
	require.Equal(t, "Alice", got.UserName)

	require.NoError(t, s.Entries().StopEntry(ctx, running.ID, now))
	_, err = s.Entries().GetRunningEntry(ctx, team.ID, alice.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	listed, err := s.Entries().ListEntries(ctx, store.EntryFilter{TeamID: team.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.False(t, listed[0].IsRunning())

	inv := domain.Invitation{
		ID: idx.New().String(), TeamID: team.ID, Email: "bob@example.com",
		Token: "encoded-token", Role: domain.RoleMember, InvitedBy: alice.ID,
		ExpiresAt: now.Add(7 * 24 * time.Hour), CreatedAt: now,
	}
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	byToken, err := s.Invitations().GetInvitationByToken(ctx, "encoded-token")
	require.NoError(t, err)
	require.Equal(t, inv.ID, byToken.ID)
}
