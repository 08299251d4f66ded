package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/store"
)

type entriesRepo struct {
	db dbtx
}

// entrySelect joins the display names reports need. LEFT JOINs because a
// referenced task may have been deleted (task_id goes NULL); missing names
// surface as empty strings and the report layer substitutes its placeholder.
const entrySelect = `
	SELECT e.id, e.team_id, e.project_id, e.task_id, e.user_id,
	       e.start_time, e.end_time, e.break_minutes, e.note,
	       e.created_at, e.updated_at,
	       COALESCE(p.name, ''), COALESCE(u.name, ''), COALESCE(t.name, '')
	FROM time_entries e
	LEFT JOIN projects p ON p.id = e.project_id
	LEFT JOIN users u ON u.id = e.user_id
	LEFT JOIN tasks t ON t.id = e.task_id`

func scanEntry(row interface{ Scan(...any) error }) (domain.TimeEntry, error) {
	var e domain.TimeEntry
	var taskID sql.NullString
	var endTime sql.NullTime
	err := row.Scan(&e.ID, &e.TeamID, &e.ProjectID, &taskID, &e.UserID,
		&e.StartTime, &endTime, &e.BreakMinutes, &e.Note,
		&e.CreatedAt, &e.UpdatedAt,
		&e.ProjectName, &e.UserName, &e.TaskName)
	e.TaskID = mapNullStringPtr(taskID)
	e.EndTime = mapNullTimePtr(endTime)
	return e, mapNotFound(err)
}

func (r *entriesRepo) GetEntryByID(ctx context.Context, id string) (domain.TimeEntry, error) {
	return scanEntry(r.db.QueryRowContext(ctx, entrySelect+` WHERE e.id = ?`, id))
}

func (r *entriesRepo) GetRunningEntry(ctx context.Context, teamID, userID string) (domain.TimeEntry, error) {
	return scanEntry(r.db.QueryRowContext(ctx,
		entrySelect+` WHERE e.team_id = ? AND e.user_id = ? AND e.end_time IS NULL`,
		teamID, userID))
}

func (r *entriesRepo) CreateEntry(ctx context.Context, e domain.TimeEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO time_entries (id, team_id, project_id, task_id, user_id,
		    start_time, end_time, break_minutes, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TeamID, e.ProjectID, mapOptionalString(e.TaskID), e.UserID,
		e.StartTime, mapOptionalTime(e.EndTime), e.BreakMinutes, e.Note,
		e.CreatedAt, e.UpdatedAt)
	return mapConstraint(err)
}

func (r *entriesRepo) UpdateEntry(ctx context.Context, e domain.TimeEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries
		 SET project_id = ?, task_id = ?, start_time = ?, end_time = ?, break_minutes = ?, note = ?, updated_at = ?
		 WHERE id = ?`,
		e.ProjectID, mapOptionalString(e.TaskID), e.StartTime, mapOptionalTime(e.EndTime),
		e.BreakMinutes, e.Note, time.Now().UTC(), e.ID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *entriesRepo) StopEntry(ctx context.Context, entryID string, end time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries SET end_time = ?, updated_at = ? WHERE id = ? AND end_time IS NULL`,
		end, time.Now().UTC(), entryID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *entriesRepo) DeleteEntry(ctx context.Context, entryID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, entryID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *entriesRepo) ListEntries(ctx context.Context, f store.EntryFilter) ([]domain.TimeEntry, error) {
	query := entrySelect + ` WHERE 1=1`
	var args []any

	if f.TeamID != "" {
		query += ` AND e.team_id = ?`
		args = append(args, f.TeamID)
	}
	if f.ProjectID != "" {
		query += ` AND e.project_id = ?`
		args = append(args, f.ProjectID)
	}
	if f.UserID != "" {
		query += ` AND e.user_id = ?`
		args = append(args, f.UserID)
	}
	if !f.From.IsZero() {
		query += ` AND e.start_time >= ?`
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += ` AND e.start_time < ?`
		args = append(args, f.To)
	}
	if f.Running {
		query += ` AND e.end_time IS NULL`
	}
	query += ` ORDER BY e.start_time DESC, e.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
