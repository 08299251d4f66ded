package sqlite

import (
	"context"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
)

type projectsRepo struct {
	db dbtx
}

const projectColumns = `id, team_id, name, description, archived, created_by, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.Archived,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return p, mapNotFound(err)
}

func (r *projectsRepo) GetProjectByID(ctx context.Context, id string) (domain.Project, error) {
	return scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
}

func (r *projectsRepo) ListProjectsForTeam(ctx context.Context, teamID string) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE team_id = ? ORDER BY name ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *projectsRepo) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, team_id, name, description, archived, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TeamID, p.Name, p.Description, p.Archived, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	return mapConstraint(err)
}

func (r *projectsRepo) UpdateProject(ctx context.Context, p domain.Project) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, archived = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, p.Archived, time.Now().UTC(), p.ID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *projectsRepo) DeleteProject(ctx context.Context, projectID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}
