package http

import (
	"encoding/json"
	"net/http"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/tallysdk"
)

type TeamsHandler struct {
	UserService *service.UserService
	TeamService *service.TeamService
}

// HandleCreate godoc
//
//	@Summary		Create a team
//	@Description	Creates a new team with the caller as its first admin.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tallysdk.CreateTeamRequest	true	"Team name"
//	@Success		201		{object}	tallysdk.Team				"id, name"
//	@Failure		400		{object}	tallysdk.ErrorResponse		"error, error_description"
//	@Router			/v1/teams [post].
func (h *TeamsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	team, err := h.TeamService.Create(ctx, req.Name, caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTeam(team))
}

// HandleList godoc
//
//	@Summary		List my teams
//	@Tags			Teams
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}	tallysdk.Team
//	@Router			/v1/teams [get].
func (h *TeamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	teams, err := h.TeamService.ListForUser(ctx, caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tallysdk.Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeam(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get a team
//	@Tags			Teams
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Team ID"
//	@Success		200	{object}	tallysdk.Team
//	@Failure		403	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id} [get].
func (h *TeamsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	team, err := h.TeamService.Get(ctx, r.PathValue("id"), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTeam(team))
}

// HandleListMembers godoc
//
//	@Summary		List team members
//	@Tags			Teams
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Team ID"
//	@Success		200	{array}	tallysdk.TeamMember
//	@Failure		403	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id}/members [get].
func (h *TeamsHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	members, err := h.TeamService.ListMembers(ctx, r.PathValue("id"), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tallysdk.TeamMember, 0, len(members))
	for _, m := range members {
		out = append(out, toMember(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleRename godoc
//
//	@Summary		Rename a team
//	@Tags			Teams
//	@Security		BearerAuth
//	@Accept			json
//	@Param			id		path		string						true	"Team ID"
//	@Param			request	body		tallysdk.UpdateTeamRequest	true	"New name"
//	@Success		204		{string}	string						"no content"
//	@Failure		403		{object}	tallysdk.ErrorResponse		"error, error_description"
//	@Router			/v1/teams/{id} [patch].
func (h *TeamsHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.UpdateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	if err := h.TeamService.Rename(ctx, r.PathValue("id"), caller.ID, req.Name); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Delete a team
//	@Description	Removes the team along with its projects, entries and
//	@Description	invitations. Admin only.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Team ID"
//	@Success		204	{string}	string	"no content"
//	@Failure		403	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id} [delete].
func (h *TeamsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.TeamService.Delete(ctx, r.PathValue("id"), caller.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateMember godoc
//
//	@Summary		Change a member's role
//	@Description	Promotes or demotes a member. Admin only; the last admin cannot be demoted.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Team ID"
//	@Param			userID	path		string						true	"User ID"
//	@Param			request	body		tallysdk.UpdateMemberRequest	true	"New role"
//	@Success		204		{string}	string						"no content"
//	@Failure		409		{object}	tallysdk.ErrorResponse		"error, error_description"
//	@Router			/v1/teams/{id}/members/{userID} [patch].
func (h *TeamsHandler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	err = h.TeamService.ChangeRole(ctx, r.PathValue("id"), caller.ID, r.PathValue("userID"), domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveMember godoc
//
//	@Summary		Remove a member
//	@Description	Admins may remove anyone but the last admin; members may remove themselves.
//	@Tags			Teams
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Team ID"
//	@Param			userID	path		string	true	"User ID"
//	@Success		204		{string}	string	"no content"
//	@Failure		409		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id}/members/{userID} [delete].
func (h *TeamsHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	err = h.TeamService.RemoveMember(ctx, r.PathValue("id"), caller.ID, r.PathValue("userID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
