package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/invite"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/idx"
	"github.com/tally-team/tally/pkg/slogx"
)

var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationInvalid  = errors.New("invitation token is invalid")
	ErrInvitationUsed     = errors.New("invitation has already been accepted")
	ErrInvitationPending  = errors.New("an invitation for this email is already pending")
	ErrEmailMismatch      = errors.New("invitation was issued for a different email")
	ErrAlreadyMember      = errors.New("user is already a member of this team")
)

type InvitationService struct {
	Store store.Store
	Teams *TeamService
	Codec *invite.Codec
}

// VerifyResult is what token verification reports back to a prospective
// member before they commit to accepting. Expired tokens still carry their
// decoded email and expiry so the UI can offer a resend.
type VerifyResult struct {
	Valid     bool
	Expired   bool
	Email     string
	ExpiresAt time.Time
	TeamID    string
	TeamName  string
	Accepted  bool
}

// Issue signs a new invitation token for an email and stores it against the
// team. Admin only; one pending invitation per email per team.
func (s *InvitationService) Issue(ctx context.Context, teamID, callerID, email string, role domain.Role) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Only admins invite.
	if err := s.Teams.RequireAdmin(ctx, teamID, callerID); err != nil {
		return domain.Invitation{}, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Invitation{}, ErrInvalidEmail
	}
	if !role.Valid() {
		return domain.Invitation{}, ErrInvalidRole
	}

	// 2. Refuse inviting an existing member.
	if u, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		if _, err := s.Store.Teams().GetMember(ctx, teamID, u.ID); err == nil {
			return domain.Invitation{}, ErrAlreadyMember
		} else if !errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, err
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, err
	}

	// 3. One pending invitation per email per team. Lapsed invitations do
	// not count; the admin can re-invite before housekeeping sweeps them.
	if _, err := s.Store.Invitations().GetPendingInvitation(ctx, teamID, email, s.Codec.Now().UTC()); err == nil {
		return domain.Invitation{}, ErrInvitationPending
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.Invitation{}, err
	}

	// 4. Sign the token and store the invitation keyed by it.
	token, expiresAt, err := s.Codec.Issue(email)
	if err != nil {
		log.Error("failed to sign invitation token", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	inv := domain.Invitation{
		ID:        idx.New().String(),
		TeamID:    teamID,
		Email:     email,
		Token:     token,
		Role:      role,
		InvitedBy: callerID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to store invitation", slog.Any("error", err))
		return domain.Invitation{}, err
	}

	log.Info("issued invitation",
		slog.String("invitation_id", inv.ID),
		slog.String("team_id", teamID),
		slog.String("email", email),
	)
	return inv, nil
}

// Verify checks a presented token without consuming it. Signature or shape
// failures come back as ErrInvitationInvalid; expiry is NOT an error, the
// result reports it alongside the decoded fields so the caller can still
// show who the invite was for.
func (s *InvitationService) Verify(ctx context.Context, teamID, token string) (VerifyResult, error) {
	v, err := s.Codec.Verify(token)
	if err != nil {
		return VerifyResult{}, ErrInvitationInvalid
	}

	res := VerifyResult{
		Valid:     v.Valid,
		Expired:   v.Expired,
		Email:     v.Email,
		ExpiresAt: v.ExpiresAt,
		TeamID:    teamID,
	}

	// Cross-check the stored row: a cryptographically fine token that was
	// never issued for this team (or was revoked) is still invalid.
	inv, err := s.Store.Invitations().GetInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return VerifyResult{}, ErrInvitationNotFound
		}
		return VerifyResult{}, err
	}
	if teamID != "" && inv.TeamID != teamID {
		return VerifyResult{}, ErrInvitationNotFound
	}

	res.TeamID = inv.TeamID
	res.Accepted = inv.Accepted()
	if team, err := s.Store.Teams().GetTeamByID(ctx, inv.TeamID); err == nil {
		res.TeamName = team.Name
	}
	return res, nil
}

// Accept consumes a valid token and adds the caller to the team. The email
// baked into the token must match the caller's verified email. Marking the
// invitation used and inserting the membership happen in one transaction.
func (s *InvitationService) Accept(ctx context.Context, token, callerID string) (domain.TeamMember, error) {
	log := slogx.FromContext(ctx)

	v, err := s.Codec.Verify(token)
	if err != nil {
		return domain.TeamMember{}, ErrInvitationInvalid
	}
	if v.Expired {
		return domain.TeamMember{}, ErrInvitationExpired
	}

	inv, err := s.Store.Invitations().GetInvitationByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TeamMember{}, ErrInvitationNotFound
	}
	if err != nil {
		return domain.TeamMember{}, err
	}
	if inv.Accepted() {
		return domain.TeamMember{}, ErrInvitationUsed
	}

	caller, err := s.Store.Users().GetUserByID(ctx, callerID)
	if err != nil {
		return domain.TeamMember{}, err
	}
	if !strings.EqualFold(caller.Email, v.Email) {
		log.Warn("invitation email mismatch",
			slog.String("invitation_id", inv.ID),
			slog.String("user_id", callerID),
		)
		return domain.TeamMember{}, ErrEmailMismatch
	}

	member := domain.TeamMember{
		TeamID:   inv.TeamID,
		UserID:   callerID,
		Role:     inv.Role,
		JoinedAt: time.Now().UTC(),
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().MarkInvitationAccepted(ctx, inv.ID, callerID, member.JoinedAt); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationUsed // raced by a concurrent accept
			}
			return err
		}
		if err := tx.Teams().AddMember(ctx, member); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyMember
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.TeamMember{}, err
	}

	log.Info("accepted invitation",
		slog.String("invitation_id", inv.ID),
		slog.String("team_id", inv.TeamID),
		slog.String("user_id", callerID),
	)
	return member, nil
}

// List returns a team's invitations. Admin only.
func (s *InvitationService) List(ctx context.Context, teamID, callerID string) ([]domain.Invitation, error) {
	if err := s.Teams.RequireAdmin(ctx, teamID, callerID); err != nil {
		return nil, err
	}
	return s.Store.Invitations().ListInvitationsForTeam(ctx, teamID)
}

// Revoke deletes a pending invitation. Admin only; accepted invitations
// stay for the audit trail.
func (s *InvitationService) Revoke(ctx context.Context, teamID, callerID, invitationID string) error {
	if err := s.Teams.RequireAdmin(ctx, teamID, callerID); err != nil {
		return err
	}

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, invitationID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvitationNotFound
	}
	if err != nil {
		return err
	}
	if inv.TeamID != teamID {
		return ErrInvitationNotFound
	}
	if inv.Accepted() {
		return ErrInvitationUsed
	}
	return s.Store.Invitations().DeleteInvitation(ctx, invitationID)
}
