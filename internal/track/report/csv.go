package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
)

// WriteCSV streams entries and their summary as a CSV export: one row per
// entry followed by breakdown sections, each introduced by its own header
// row. No blank records are written; strict readers reject those.
// Still-running entries get an empty end column but their elapsed time
// still counts in the duration column.
func WriteCSV(w io.Writer, entries []domain.TimeEntry, sum Summary, now time.Time) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "project", "task", "user", "start", "end", "break_minutes", "duration"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("report: writing csv header: %w", err)
	}

	for _, e := range entries {
		end := ""
		if e.EndTime != nil {
			end = e.EndTime.Format("15:04:05")
		}

		row := []string{
			e.StartTime.Format("2006-01-02"),
			orUnknown(e.ProjectName),
			e.TaskName,
			orUnknown(e.UserName),
			e.StartTime.Format("15:04:05"),
			end,
			fmt.Sprintf("%d", e.BreakMinutes),
			FormatHMS(e.DurationSeconds(now)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: writing csv row: %w", err)
		}
	}

	sections := []struct {
		label   string
		buckets []Bucket
	}{
		{"total by project", sum.ByProject},
		{"total by user", sum.ByUser},
		{"total by task", sum.ByTask},
	}

	for _, sec := range sections {
		if len(sec.buckets) == 0 {
			continue
		}
		if err := cw.Write([]string{sec.label, "", "total", "percent"}); err != nil {
			return fmt.Errorf("report: writing csv section header: %w", err)
		}
		for _, b := range sec.buckets {
			row := []string{b.Name, "", FormatHMS(b.TotalSeconds), fmt.Sprintf("%.1f%%", b.Percent)}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("report: writing csv section row: %w", err)
			}
		}
	}

	if err := cw.Write([]string{"grand total", "", FormatHMS(sum.TotalSeconds), ""}); err != nil {
		return fmt.Errorf("report: writing csv total: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownLabel
	}
	return s
}
