// Package report reduces raw time entries into the derived summaries behind
// the dashboard, the report endpoints and the CSV export. Everything here is
// pure data shaping: no I/O, no store access, no failure modes beyond
// shrugging at incomplete input.
package report

import (
	"sort"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
)

// UnknownLabel substitutes for project/user/task names missing from joined
// rows. Missing names are expected (deleted rows, partial joins) and must
// never make a report fail.
const UnknownLabel = "Unknown"

// Options selects which breakdowns to compute. The dimensions are
// independent; the dashboard asks for project+user+month, project reports
// for project only, exports for project+user+task.
type Options struct {
	ByProject bool
	ByUser    bool
	ByTask    bool
	ByMonth   bool

	// Now is the effective end time for entries still running. The zero
	// value means wall-clock now.
	Now time.Time
}

// Bucket is one row of a breakdown: total seconds for a key plus its share
// of the grand total.
type Bucket struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TotalSeconds int64   `json:"total_seconds"`
	Percent      float64 `json:"percent"`
}

// Summary is the aggregate over one set of entries. ByMonth maps calendar
// month number (1-12, from each entry's start time, not year-aware) to
// fractional hours. Breakdown slices are sorted descending by total with
// ties keeping first-seen input order.
type Summary struct {
	TotalSeconds int64           `json:"total_seconds"`
	ByProject    []Bucket        `json:"by_project,omitempty"`
	ByUser       []Bucket        `json:"by_user,omitempty"`
	ByTask       []Bucket        `json:"by_task,omitempty"`
	ByMonth      map[int]float64 `json:"by_month,omitempty"`
}

// Aggregate computes totals and the requested breakdowns over entries.
// Entries with no start time are skipped; entries whose duration comes out
// zero or negative (end before start, or breaks exceeding the span)
// contribute nothing anywhere. Ongoing entries count up to opts.Now, so
// repeated calls over the same ongoing entry yield growing totals. For any
// partition the bucket totals always sum back to TotalSeconds.
func Aggregate(entries []domain.TimeEntry, opts Options) Summary {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	sum := Summary{}
	var projects, users, tasks *accumulator
	if opts.ByProject {
		projects = newAccumulator()
	}
	if opts.ByUser {
		users = newAccumulator()
	}
	if opts.ByTask {
		tasks = newAccumulator()
	}
	if opts.ByMonth {
		sum.ByMonth = make(map[int]float64)
	}

	for _, e := range entries {
		secs := e.DurationSeconds(now)
		if secs <= 0 {
			continue
		}

		sum.TotalSeconds += secs

		if projects != nil {
			projects.add(e.ProjectID, e.ProjectName, secs)
		}
		if users != nil {
			users.add(e.UserID, e.UserName, secs)
		}
		if tasks != nil {
			taskID := ""
			if e.TaskID != nil {
				taskID = *e.TaskID
			}
			tasks.add(taskID, e.TaskName, secs)
		}
		if sum.ByMonth != nil {
			sum.ByMonth[int(e.StartTime.Month())] += float64(secs) / 3600.0
		}
	}

	if projects != nil {
		sum.ByProject = projects.buckets(sum.TotalSeconds)
	}
	if users != nil {
		sum.ByUser = users.buckets(sum.TotalSeconds)
	}
	if tasks != nil {
		sum.ByTask = tasks.buckets(sum.TotalSeconds)
	}

	return sum
}

// accumulator keeps per-key running totals in first-seen order so that the
// final sort can break ties by input order instead of map iteration order.
type accumulator struct {
	byKey map[string]*Bucket
	order []string
}

func newAccumulator() *accumulator {
	return &accumulator{byKey: make(map[string]*Bucket)}
}

// add books secs against key. The display name sticks from the first entry
// seen for the key; absent names fall back to UnknownLabel.
func (a *accumulator) add(key, name string, secs int64) {
	b, ok := a.byKey[key]
	if !ok {
		if name == "" {
			name = UnknownLabel
		}
		b = &Bucket{ID: key, Name: name}
		a.byKey[key] = b
		a.order = append(a.order, key)
	}
	b.TotalSeconds += secs
}

func (a *accumulator) buckets(total int64) []Bucket {
	out := make([]Bucket, 0, len(a.order))
	for _, key := range a.order {
		b := *a.byKey[key]
		if total > 0 {
			b.Percent = float64(b.TotalSeconds) / float64(total) * 100
		}
		out = append(out, b)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSeconds > out[j].TotalSeconds
	})
	return out
}
