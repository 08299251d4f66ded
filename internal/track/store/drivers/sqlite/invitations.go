package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, team_id, email, token, role, invited_by, expires_at, accepted_at, accepted_by, created_at`

func scanInvitation(row interface{ Scan(...any) error }) (domain.Invitation, error) {
	var inv domain.Invitation
	var role string
	var acceptedAt sql.NullTime
	var acceptedBy sql.NullString
	err := row.Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Token, &role,
		&inv.InvitedBy, &inv.ExpiresAt, &acceptedAt, &acceptedBy, &inv.CreatedAt)
	inv.Role = domain.Role(role)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	inv.AcceptedBy = mapNullString(acceptedBy)
	return inv, mapNotFound(err)
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, team_id, email, token, role, invited_by, expires_at, accepted_at, accepted_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TeamID, inv.Email, inv.Token, string(inv.Role), inv.InvitedBy,
		inv.ExpiresAt, mapOptionalTime(inv.AcceptedAt), mapStringNull(inv.AcceptedBy), inv.CreatedAt)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id))
}

func (r *invitationsRepo) GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token = ?`, token))
}

func (r *invitationsRepo) GetPendingInvitation(ctx context.Context, teamID, email string, now time.Time) (domain.Invitation, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE team_id = ? AND email = ? AND accepted_at IS NULL AND expires_at > ?
		 ORDER BY created_at DESC LIMIT 1`, teamID, email, now))
}

func (r *invitationsRepo) ListInvitationsForTeam(ctx context.Context, teamID string) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE team_id = ? ORDER BY created_at DESC`,
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) MarkInvitationAccepted(ctx context.Context, id, userID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET accepted_at = ?, accepted_by = ? WHERE id = ? AND accepted_at IS NULL`,
		at, userID, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE accepted_at IS NULL AND expires_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
