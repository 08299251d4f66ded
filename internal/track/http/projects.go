package http

import (
	"encoding/json"
	"net/http"

	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/tallysdk"
)

type ProjectsHandler struct {
	UserService    *service.UserService
	ProjectService *service.ProjectService
}

// HandleCreate godoc
//
//	@Summary		Create a project
//	@Tags			Projects
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Team ID"
//	@Param			request	body		tallysdk.CreateProjectRequest	true	"Project"
//	@Success		201		{object}	tallysdk.Project
//	@Failure		400		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id}/projects [post].
func (h *ProjectsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	p, err := h.ProjectService.Create(ctx, r.PathValue("id"), caller.ID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toProject(p))
}

// HandleList godoc
//
//	@Summary		List a team's projects
//	@Tags			Projects
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Team ID"
//	@Success		200	{array}	tallysdk.Project
//	@Router			/v1/teams/{id}/projects [get].
func (h *ProjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	projects, err := h.ProjectService.ListForTeam(ctx, r.PathValue("id"), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tallysdk.Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProject(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdate godoc
//
//	@Summary		Update a project
//	@Description	Renames, re-describes or archives a project. Admin only.
//	@Tags			Projects
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Project ID"
//	@Param			request	body		tallysdk.UpdateProjectRequest	true	"Project"
//	@Success		200		{object}	tallysdk.Project
//	@Failure		403		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/projects/{id} [patch].
func (h *ProjectsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	p, err := h.ProjectService.Update(ctx, r.PathValue("id"), caller.ID, req.Name, req.Description, req.Archived)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProject(p))
}

// HandleDelete godoc
//
//	@Summary		Delete a project
//	@Description	Removes a project and its tasks. Admin only.
//	@Tags			Projects
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Project ID"
//	@Success		204	{string}	string	"no content"
//	@Failure		403	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/projects/{id} [delete].
func (h *ProjectsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.ProjectService.Delete(ctx, r.PathValue("id"), caller.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
