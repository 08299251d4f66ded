package postgres

import (
	"context"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
)

type teamsRepo struct {
	db dbtx
}

func (r *teamsRepo) GetTeamByID(ctx context.Context, id string) (domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at, updated_at FROM teams WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, mapNotFound(err)
}

func (r *teamsRepo) ListTeamsForUser(ctx context.Context, userID string) ([]domain.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_by, t.created_at, t.updated_at
		 FROM teams t
		 JOIN team_members m ON m.team_id = t.id
		 WHERE m.user_id = $1
		 ORDER BY t.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *teamsRepo) CreateTeam(ctx context.Context, t domain.Team) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	return mapConstraint(err)
}

func (r *teamsRepo) UpdateTeamName(ctx context.Context, teamID string, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE teams SET name = $1, updated_at = $2 WHERE id = $3`,
		name, time.Now().UTC(), teamID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *teamsRepo) DeleteTeam(ctx context.Context, teamID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *teamsRepo) AddMember(ctx context.Context, m domain.TeamMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (team_id, user_id, role, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		m.TeamID, m.UserID, string(m.Role), m.JoinedAt)
	return mapConstraint(err)
}

func (r *teamsRepo) GetMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error) {
	var m domain.TeamMember
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT m.team_id, m.user_id, m.role, m.joined_at, u.name, u.email
		 FROM team_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.team_id = $1 AND m.user_id = $2`, teamID, userID).
		Scan(&m.TeamID, &m.UserID, &role, &m.JoinedAt, &m.UserName, &m.UserEmail)
	m.Role = domain.Role(role)
	return m, mapNotFound(err)
}

func (r *teamsRepo) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.team_id, m.user_id, m.role, m.joined_at, u.name, u.email
		 FROM team_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.team_id = $1
		 ORDER BY m.joined_at ASC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		var role string
		if err := rows.Scan(&m.TeamID, &m.UserID, &role, &m.JoinedAt, &m.UserName, &m.UserEmail); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *teamsRepo) UpdateMemberRole(ctx context.Context, teamID, userID string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE team_members SET role = $1 WHERE team_id = $2 AND user_id = $3`,
		string(role), teamID, userID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *teamsRepo) RemoveMember(ctx context.Context, teamID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *teamsRepo) CountAdmins(ctx context.Context, teamID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2`,
		teamID, string(domain.RoleAdmin)).Scan(&n)
	return n, err
}
