package domain

import "time"

// TimeEntry is one unit of logged work. EndTime nil means the entry is still
// running ("time elapsed so far"); TaskID nil means the entry was logged
// directly against a project.
type TimeEntry struct {
	ID           string
	TeamID       string
	ProjectID    string
	TaskID       *string
	UserID       string
	StartTime    time.Time
	EndTime      *time.Time
	BreakMinutes int
	Note         string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined from the store for reporting. May be empty when the referenced
	// row has been deleted; the aggregation engine substitutes "Unknown".
	ProjectName string
	UserName    string
	TaskName    string
}

// IsRunning reports whether the entry has no recorded end time.
func (e TimeEntry) IsRunning() bool { return e.EndTime == nil }

// DurationSeconds returns the billable duration: (end or now) minus start,
// minus break minutes. Results that come out zero or negative contribute
// nothing to totals; that is the caller's cue to ignore the entry, not an
// error. Entries with no start time also report zero.
func (e TimeEntry) DurationSeconds(now time.Time) int64 {
	if e.StartTime.IsZero() {
		return 0
	}

	end := now
	if e.EndTime != nil {
		end = *e.EndTime
	}

	secs := int64(end.Sub(e.StartTime).Seconds()) - int64(e.BreakMinutes)*60
	if secs <= 0 {
		return 0
	}
	return secs
}
