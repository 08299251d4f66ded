package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/tallysdk"
)

type InvitationsHandler struct {
	UserService       *service.UserService
	InvitationService *service.InvitationService

	// LinkBase is the frontend URL invite links point at, e.g.
	// "https://tally.example.com/invite". Empty leaves Link unset.
	LinkBase string
}

func (h *InvitationsHandler) inviteLink(teamID, token string) string {
	if h.LinkBase == "" {
		return ""
	}
	q := url.Values{}
	q.Set("token", token)
	q.Set("teamId", teamID)
	return h.LinkBase + "?" + q.Encode()
}

// HandleIssue godoc
//
//	@Summary		Invite someone to a team
//	@Description	Signs a new invitation token for an email address and returns
//	@Description	it with a ready-to-send link. Admin only; one pending
//	@Description	invitation per email per team.
//	@Tags			Invitations
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Team ID"
//	@Param			request	body		tallysdk.InviteRequest	true	"Invitee"
//	@Success		201		{object}	tallysdk.Invitation
//	@Failure		409		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id}/invitations [post].
func (h *InvitationsHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	inv, err := h.InvitationService.Issue(ctx, r.PathValue("id"), caller.ID, req.Email, domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInvitation(inv, h.inviteLink(inv.TeamID, inv.Token)))
}

// HandleList godoc
//
//	@Summary		List a team's invitations
//	@Description	Admin only. Tokens are not replayed in the listing.
//	@Tags			Invitations
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Team ID"
//	@Success		200	{array}	tallysdk.Invitation
//	@Router			/v1/teams/{id}/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	invitations, err := h.InvitationService.List(ctx, r.PathValue("id"), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tallysdk.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		inv.Token = ""
		out = append(out, toInvitation(inv, ""))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleVerify godoc
//
//	@Summary		Verify an invitation token
//	@Description	Public preview of an invite link, no authentication needed.
//	@Description	Expired invitations still return the email and expiry so the
//	@Description	page can offer a resend; anything else invalid is rejected
//	@Description	without detail.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	query		string	true	"Encoded invitation token"
//	@Param			teamId	query		string	false	"Expected team ID"
//	@Success		200		{object}	tallysdk.VerifyInvitationResponse
//	@Failure		400		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/invitations/verify [get].
func (h *InvitationsHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	if token == "" {
		writeBadRequest(w, "token is required")
		return
	}

	res, err := h.InvitationService.Verify(ctx, r.URL.Query().Get("teamId"), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tallysdk.VerifyInvitationResponse{
		Valid:     res.Valid,
		Expired:   res.Expired,
		Accepted:  res.Accepted,
		Email:     res.Email,
		ExpiresAt: res.ExpiresAt,
		TeamID:    res.TeamID,
		TeamName:  res.TeamName,
	})
}

// HandleAccept godoc
//
//	@Summary		Accept an invitation
//	@Description	Joins the caller to the inviting team. The caller's email must
//	@Description	match the one the invitation was issued for.
//	@Tags			Invitations
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tallysdk.AcceptInvitationRequest	true	"Token"
//	@Success		200		{object}	tallysdk.TeamMember
//	@Failure		410		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/invitations/accept [post].
func (h *InvitationsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	m, err := h.InvitationService.Accept(ctx, req.Token, caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMember(m))
}

// HandleRevoke godoc
//
//	@Summary		Revoke a pending invitation
//	@Tags			Invitations
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Team ID"
//	@Param			invID	path		string	true	"Invitation ID"
//	@Success		204		{string}	string	"no content"
//	@Failure		409		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id}/invitations/{invID} [delete].
func (h *InvitationsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.InvitationService.Revoke(ctx, r.PathValue("id"), caller.ID, r.PathValue("invID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
