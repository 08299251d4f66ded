package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tally-team/tally/internal/track/domain"
)

func TestWriteCSV(t *testing.T) {
	now := timeAt(12, 0)
	entries := []domain.TimeEntry{
		entry("A", "X", timeAt(9, 0), timeAt(10, 30), 0),
		entry("B", "X", timeAt(9, 0), timeAt(9, 15), 5),
	}
	sum := Aggregate(entries, Options{ByProject: true, ByUser: true, Now: now})

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, entries, sum, now))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, "date,project,task,user,start,end,break_minutes,duration", lines[0])
	require.Equal(t, "2025-03-10,Project A,,User X,09:00:00,10:30:00,0,01:30:00", lines[1])
	require.Equal(t, "2025-03-10,Project B,,User X,09:00:00,09:15:00,5,00:10:00", lines[2])

	// Sections start with their own header row; no blank records anywhere.
	require.Equal(t, "total by project,,total,percent", lines[3])
	require.Equal(t, "grand total,,01:40:00,", lines[len(lines)-1])
	require.NotContains(t, buf.String(), "\n\n")

	out := buf.String()
	require.Contains(t, out, "Project A,,01:30:00,90.0%")
	require.Contains(t, out, "Project B,,00:10:00,10.0%")
	require.Contains(t, out, "total by user,,total,percent")
}

func TestWriteCSVOngoingEntry(t *testing.T) {
	now := timeAt(10, 0)
	running := domain.TimeEntry{
		ProjectID:   "A",
		ProjectName: "Project A",
		UserID:      "X",
		UserName:    "User X",
		StartTime:   timeAt(9, 0),
	}
	sum := Aggregate([]domain.TimeEntry{running}, Options{Now: now})

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, []domain.TimeEntry{running}, sum, now))

	// Open end column, but elapsed time still counted.
	require.Contains(t, buf.String(), "2025-03-10,Project A,,User X,09:00:00,,0,01:00:00")
	require.Contains(t, buf.String(), "grand total,,01:00:00,")
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, nil, Summary{}, time.Now()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "date,project,task,user,start,end,break_minutes,duration", lines[0])
	require.Equal(t, "grand total,,00:00:00,", lines[1])
}
