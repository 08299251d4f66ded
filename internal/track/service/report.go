package service

import (
	"context"
	"io"
	"time"

	"github.com/tally-team/tally/internal/track/report"
	"github.com/tally-team/tally/internal/track/store"
)

type ReportService struct {
	Store    store.Store
	Teams    *TeamService
	Projects *ProjectService
}

// Dashboard aggregates a team's entries into the dashboard summary:
// project and user breakdowns plus the monthly hours histogram.
func (s *ReportService) Dashboard(ctx context.Context, teamID, callerID string, from, to time.Time) (report.Summary, error) {
	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return report.Summary{}, err
	}

	entries, err := s.Store.Entries().ListEntries(ctx, store.EntryFilter{
		TeamID: teamID, From: from, To: to,
	})
	if err != nil {
		return report.Summary{}, err
	}

	return report.Aggregate(entries, report.Options{
		ByProject: true,
		ByUser:    true,
		ByMonth:   true,
	}), nil
}

// ProjectReport aggregates one project's entries: total plus the per-user
// and per-task splits for that project.
func (s *ReportService) ProjectReport(ctx context.Context, projectID, callerID string, from, to time.Time) (report.Summary, error) {
	p, err := s.Projects.Get(ctx, projectID, callerID)
	if err != nil {
		return report.Summary{}, err
	}

	entries, err := s.Store.Entries().ListEntries(ctx, store.EntryFilter{
		TeamID: p.TeamID, ProjectID: projectID, From: from, To: to,
	})
	if err != nil {
		return report.Summary{}, err
	}

	return report.Aggregate(entries, report.Options{
		ByUser: true,
		ByTask: true,
	}), nil
}

// ExportCSV streams a team's raw entries and breakdown totals as CSV.
func (s *ReportService) ExportCSV(ctx context.Context, w io.Writer, teamID, callerID string, from, to time.Time) error {
	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return err
	}

	entries, err := s.Store.Entries().ListEntries(ctx, store.EntryFilter{
		TeamID: teamID, From: from, To: to,
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	sum := report.Aggregate(entries, report.Options{
		ByProject: true,
		ByUser:    true,
		ByTask:    true,
		Now:       now,
	})
	return report.WriteCSV(w, entries, sum, now)
}
