package postgres

import (
	"context"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
)

type tasksRepo struct {
	db dbtx
}

const taskColumns = `id, project_id, name, done, created_by, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Done, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, mapNotFound(err)
}

func (r *tasksRepo) GetTaskByID(ctx context.Context, id string) (domain.Task, error) {
	return scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

func (r *tasksRepo) ListTasksForProject(ctx context.Context, projectID string) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY done ASC, created_at ASC`,
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tasksRepo) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, name, done, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.ProjectID, t.Name, t.Done, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	return mapConstraint(err)
}

func (r *tasksRepo) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET name = $1, done = $2, updated_at = $3 WHERE id = $4`,
		t.Name, t.Done, time.Now().UTC(), t.ID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *tasksRepo) DeleteTask(ctx context.Context, taskID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}
