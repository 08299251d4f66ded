package http

import (
	"time"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/report"
	"github.com/tally-team/tally/pkg/tallysdk"
)

func toUser(u domain.User) tallysdk.User {
	return tallysdk.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func toTeam(t domain.Team) tallysdk.Team {
	return tallysdk.Team{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}

func toMember(m domain.TeamMember) tallysdk.TeamMember {
	return tallysdk.TeamMember{
		UserID:   m.UserID,
		Name:     m.UserName,
		Email:    m.UserEmail,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

func toProject(p domain.Project) tallysdk.Project {
	return tallysdk.Project{
		ID:          p.ID,
		TeamID:      p.TeamID,
		Name:        p.Name,
		Description: p.Description,
		Archived:    p.Archived,
		CreatedAt:   p.CreatedAt,
	}
}

func toTask(t domain.Task) tallysdk.Task {
	return tallysdk.Task{
		ID:        t.ID,
		ProjectID: t.ProjectID,
		Name:      t.Name,
		Done:      t.Done,
		CreatedAt: t.CreatedAt,
	}
}

func toEntry(e domain.TimeEntry, now time.Time) tallysdk.TimeEntry {
	return tallysdk.TimeEntry{
		ID:              e.ID,
		TeamID:          e.TeamID,
		ProjectID:       e.ProjectID,
		ProjectName:     e.ProjectName,
		TaskID:          e.TaskID,
		TaskName:        e.TaskName,
		UserID:          e.UserID,
		UserName:        e.UserName,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		BreakMinutes:    e.BreakMinutes,
		Note:            e.Note,
		Running:         e.IsRunning(),
		DurationSeconds: e.DurationSeconds(now),
	}
}

func toEntries(entries []domain.TimeEntry, now time.Time) []tallysdk.TimeEntry {
	out := make([]tallysdk.TimeEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntry(e, now))
	}
	return out
}

func toInvitation(inv domain.Invitation, link string) tallysdk.Invitation {
	return tallysdk.Invitation{
		ID:         inv.ID,
		TeamID:     inv.TeamID,
		Email:      inv.Email,
		Role:       string(inv.Role),
		Token:      inv.Token,
		Link:       link,
		ExpiresAt:  inv.ExpiresAt,
		AcceptedAt: inv.AcceptedAt,
		CreatedAt:  inv.CreatedAt,
	}
}

func toBuckets(buckets []report.Bucket) []tallysdk.ReportBucket {
	out := make([]tallysdk.ReportBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, tallysdk.ReportBucket{
			ID:           b.ID,
			Name:         b.Name,
			TotalSeconds: b.TotalSeconds,
			Total:        report.FormatHMS(b.TotalSeconds),
			Percent:      b.Percent,
		})
	}
	return out
}

func toSummary(sum report.Summary) tallysdk.ReportSummary {
	return tallysdk.ReportSummary{
		TotalSeconds: sum.TotalSeconds,
		Total:        report.FormatHMS(sum.TotalSeconds),
		TotalHuman:   report.FormatHoursMinutes(sum.TotalSeconds),
		ByProject:    toBuckets(sum.ByProject),
		ByUser:       toBuckets(sum.ByUser),
		ByTask:       toBuckets(sum.ByTask),
		ByMonth:      sum.ByMonth,
	}
}
