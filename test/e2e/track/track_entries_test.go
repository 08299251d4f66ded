package track_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tally-team/tally/pkg/tallysdk"
)

// TestTimerFlow starts a timer, confirms a second one is refused, stops it
// and checks the closed entry comes back from listing.
func TestTimerFlow(t *testing.T) {
	baseURL := setupServer(t)

	client, user := loginAs(t, baseURL, "sub-worker", "worker@example.com", "Worker")
	team, err := client.CreateTeam(t.Context(), "Acme")
	require.NoError(t, err)
	project, err := client.CreateProject(t.Context(), team.ID, tallysdk.CreateProjectRequest{Name: "Website"})
	require.NoError(t, err)

	running, err := client.StartEntry(t.Context(), tallysdk.StartEntryRequest{
		TeamID:    team.ID,
		ProjectID: project.ID,
		Note:      "morning work",
	})
	require.NoError(t, err)
	require.True(t, running.Running)
	require.Nil(t, running.EndTime)

	// Second concurrent timer in the same team is refused.
	_, err = client.StartEntry(t.Context(), tallysdk.StartEntryRequest{
		TeamID:    team.ID,
		ProjectID: project.ID,
	})
	var apiErr *tallysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 409, apiErr.StatusCode)

	got, err := client.RunningEntry(t.Context(), team.ID)
	require.NoError(t, err)
	require.Equal(t, running.ID, got.ID)

	stopped, err := client.StopEntry(t.Context(), team.ID)
	require.NoError(t, err)
	require.Equal(t, running.ID, stopped.ID)
	require.False(t, stopped.Running)
	require.NotNil(t, stopped.EndTime)

	// No timer left to stop.
	_, err = client.StopEntry(t.Context(), team.ID)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 404, apiErr.StatusCode)

	entries, err := client.ListEntries(t.Context(), team.ID, tallysdk.EntryListFilter{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "morning work", entries[0].Note)
}

// TestLoggedEntriesAndDashboard logs a day of entries and checks the
// dashboard aggregation plus the CSV export over the public API.
func TestLoggedEntriesAndDashboard(t *testing.T) {
	baseURL := setupServer(t)

	client, _ := loginAs(t, baseURL, "sub-worker", "worker@example.com", "Worker")
	team, err := client.CreateTeam(t.Context(), "Acme")
	require.NoError(t, err)
	website, err := client.CreateProject(t.Context(), team.ID, tallysdk.CreateProjectRequest{Name: "Website"})
	require.NoError(t, err)
	backend, err := client.CreateProject(t.Context(), team.ID, tallysdk.CreateProjectRequest{Name: "Backend"})
	require.NoError(t, err)

	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	log := func(projectID string, start time.Time, minutes, breakMinutes int) tallysdk.TimeEntry {
		end := start.Add(time.Duration(minutes) * time.Minute)
		e, err := client.LogEntry(t.Context(), tallysdk.CreateEntryRequest{
			TeamID:       team.ID,
			ProjectID:    projectID,
			StartTime:    start,
			EndTime:      &end,
			BreakMinutes: breakMinutes,
		})
		require.NoError(t, err)
		return e
	}

	// 120min - 30min break = 90min on Website, 60min on Backend.
	first := log(website.ID, day, 120, 30)
	require.Equal(t, int64(90*60), first.DurationSeconds)
	log(backend.ID, day.Add(3*time.Hour), 60, 0)

	sum, err := client.Dashboard(t.Context(), team.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Equal(t, int64(150*60), sum.TotalSeconds)
	require.Equal(t, "02:30:00", sum.Total)
	require.Equal(t, "2h 30m", sum.TotalHuman)

	require.Len(t, sum.ByProject, 2)
	require.Equal(t, "Website", sum.ByProject[0].Name)
	require.Equal(t, int64(90*60), sum.ByProject[0].TotalSeconds)
	require.Equal(t, "01:30:00", sum.ByProject[0].Total)
	require.InDelta(t, 60.0, sum.ByProject[0].Percent, 0.05)
	require.Equal(t, "Backend", sum.ByProject[1].Name)
	require.InDelta(t, 40.0, sum.ByProject[1].Percent, 0.05)

	require.InDelta(t, 2.5, sum.ByMonth[3], 0.001)

	csv, err := client.ExportCSV(t.Context(), team.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	require.Equal(t, "date,project,task,user,start,end,break_minutes,duration", lines[0])
	require.Contains(t, string(csv), "2025-03-10,Website,,Worker,09:00:00,11:00:00,30,01:30:00")
	require.Contains(t, string(csv), "grand total,,02:30:00,")
}

// TestEntryValidationOverHTTP exercises the invalid-request mapping: end
// before start and a break longer than the span both come back as 400s.
func TestEntryValidationOverHTTP(t *testing.T) {
	baseURL := setupServer(t)

	client, _ := loginAs(t, baseURL, "sub-worker", "worker@example.com", "Worker")
	team, err := client.CreateTeam(t.Context(), "Acme")
	require.NoError(t, err)
	project, err := client.CreateProject(t.Context(), team.ID, tallysdk.CreateProjectRequest{Name: "Website"})
	require.NoError(t, err)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	_, err = client.LogEntry(t.Context(), tallysdk.CreateEntryRequest{
		TeamID:    team.ID,
		ProjectID: project.ID,
		StartTime: start,
		EndTime:   &before,
	})
	var apiErr *tallysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.StatusCode)
	require.Equal(t, "invalid_request", apiErr.Code)

	end := start.Add(30 * time.Minute)
	_, err = client.LogEntry(t.Context(), tallysdk.CreateEntryRequest{
		TeamID:       team.ID,
		ProjectID:    project.ID,
		StartTime:    start,
		EndTime:      &end,
		BreakMinutes: 45,
	})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.StatusCode)
}

// TestEntryOwnershipOverHTTP checks a plain member cannot edit someone
// else's entry but a team admin can.
func TestEntryOwnershipOverHTTP(t *testing.T) {
	baseURL := setupServer(t)

	admin, _ := loginAs(t, baseURL, "sub-admin", "admin@example.com", "Admin")
	team, err := admin.CreateTeam(t.Context(), "Acme")
	require.NoError(t, err)
	project, err := admin.CreateProject(t.Context(), team.ID, tallysdk.CreateProjectRequest{Name: "Website"})
	require.NoError(t, err)

	inv, err := admin.Invite(t.Context(), team.ID, "member@example.com", "member")
	require.NoError(t, err)
	member, _ := loginAs(t, baseURL, "sub-member", "member@example.com", "Member")
	_, err = member.AcceptInvitation(t.Context(), inv.Token)
	require.NoError(t, err)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	adminEntry, err := admin.LogEntry(t.Context(), tallysdk.CreateEntryRequest{
		TeamID:    team.ID,
		ProjectID: project.ID,
		StartTime: start,
		EndTime:   &end,
	})
	require.NoError(t, err)

	_, err = member.UpdateEntry(t.Context(), adminEntry.ID, tallysdk.UpdateEntryRequest{
		ProjectID: project.ID,
		StartTime: start,
		EndTime:   &end,
		Note:      "not mine",
	})
	var apiErr *tallysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 403, apiErr.StatusCode)

	memberEntry, err := member.LogEntry(t.Context(), tallysdk.CreateEntryRequest{
		TeamID:    team.ID,
		ProjectID: project.ID,
		StartTime: start,
		EndTime:   &end,
	})
	require.NoError(t, err)

	updated, err := admin.UpdateEntry(t.Context(), memberEntry.ID, tallysdk.UpdateEntryRequest{
		ProjectID: project.ID,
		StartTime: start,
		EndTime:   &end,
		Note:      "adjusted by admin",
	})
	require.NoError(t, err)
	require.Equal(t, "adjusted by admin", updated.Note)
}
