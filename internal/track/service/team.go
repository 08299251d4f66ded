package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/idx"
	"github.com/tally-team/tally/pkg/slogx"
)

var (
	ErrInvalidTeamName = errors.New("invalid team name")
	ErrTeamNotFound    = errors.New("team not found")
	ErrNotMember       = errors.New("not a member of this team")
	ErrNotAdmin        = errors.New("requires team admin role")
	ErrMemberNotFound  = errors.New("member not found")
	ErrLastAdmin       = errors.New("cannot remove or demote the last admin")
	ErrInvalidRole     = errors.New("invalid role")
)

type TeamService struct {
	Store store.Store
}

// Create makes a new team with the creator as its first admin. The team row
// and the membership row land in one transaction so there is never a team
// without an admin.
func (s *TeamService) Create(ctx context.Context, name, creatorID string) (domain.Team, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Team{}, ErrInvalidTeamName
	}

	now := time.Now().UTC()
	team := domain.Team{
		ID:        idx.New().String(),
		Name:      name,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Teams().CreateTeam(ctx, team); err != nil {
			return err
		}
		return tx.Teams().AddMember(ctx, domain.TeamMember{
			TeamID:   team.ID,
			UserID:   creatorID,
			Role:     domain.RoleAdmin,
			JoinedAt: now,
		})
	})
	if err != nil {
		log.Error("failed to create team", slog.Any("error", err))
		return domain.Team{}, err
	}

	log.Info("created team",
		slog.String("team_id", team.ID),
		slog.String("created_by", creatorID),
	)
	return team, nil
}

// Get returns a team, requiring the caller to be a member.
func (s *TeamService) Get(ctx context.Context, teamID, callerID string) (domain.Team, error) {
	if _, err := s.RequireMember(ctx, teamID, callerID); err != nil {
		return domain.Team{}, err
	}
	team, err := s.Store.Teams().GetTeamByID(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Team{}, ErrTeamNotFound
	}
	return team, err
}

// ListForUser returns the caller's teams.
func (s *TeamService) ListForUser(ctx context.Context, userID string) ([]domain.Team, error) {
	return s.Store.Teams().ListTeamsForUser(ctx, userID)
}

// Rename changes the team name. Admin only.
func (s *TeamService) Rename(ctx context.Context, teamID, callerID, name string) error {
	if err := s.RequireAdmin(ctx, teamID, callerID); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidTeamName
	}
	err := s.Store.Teams().UpdateTeamName(ctx, teamID, name)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTeamNotFound
	}
	return err
}

// Delete removes the team and, via schema cascades, everything under it.
// Admin only.
func (s *TeamService) Delete(ctx context.Context, teamID, callerID string) error {
	if err := s.RequireAdmin(ctx, teamID, callerID); err != nil {
		return err
	}

	log := slogx.FromContext(ctx)
	err := s.Store.Teams().DeleteTeam(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTeamNotFound
	}
	if err == nil {
		log.Info("deleted team",
			slog.String("team_id", teamID),
			slog.String("deleted_by", callerID),
		)
	}
	return err
}

// ListMembers returns the team roster. Any member may look.
func (s *TeamService) ListMembers(ctx context.Context, teamID, callerID string) ([]domain.TeamMember, error) {
	if _, err := s.RequireMember(ctx, teamID, callerID); err != nil {
		return nil, err
	}
	return s.Store.Teams().ListMembers(ctx, teamID)
}

// ChangeRole promotes or demotes a member. Admin only; demoting the last
// admin is refused so the team stays administrable.
func (s *TeamService) ChangeRole(ctx context.Context, teamID, callerID, userID string, role domain.Role) error {
	if err := s.RequireAdmin(ctx, teamID, callerID); err != nil {
		return err
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	member, err := s.Store.Teams().GetMember(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if member.IsAdmin() && role != domain.RoleAdmin {
			n, err := tx.Teams().CountAdmins(ctx, teamID)
			if err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastAdmin
			}
		}
		return tx.Teams().UpdateMemberRole(ctx, teamID, userID, role)
	})
}

// RemoveMember kicks a member. Admins can remove anyone but the last admin;
// members can remove themselves (leave).
func (s *TeamService) RemoveMember(ctx context.Context, teamID, callerID, userID string) error {
	caller, err := s.RequireMember(ctx, teamID, callerID)
	if err != nil {
		return err
	}
	if callerID != userID && !caller.IsAdmin() {
		return ErrNotAdmin
	}

	member, err := s.Store.Teams().GetMember(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if member.IsAdmin() {
			n, err := tx.Teams().CountAdmins(ctx, teamID)
			if err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastAdmin
			}
		}
		return tx.Teams().RemoveMember(ctx, teamID, userID)
	})
}

// RequireMember returns the caller's membership or ErrNotMember.
func (s *TeamService) RequireMember(ctx context.Context, teamID, userID string) (domain.TeamMember, error) {
	m, err := s.Store.Teams().GetMember(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TeamMember{}, ErrNotMember
	}
	return m, err
}

// RequireAdmin returns nil only when the caller is a team admin.
func (s *TeamService) RequireAdmin(ctx context.Context, teamID, userID string) error {
	m, err := s.RequireMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if !m.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}
