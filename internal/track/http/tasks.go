package http

import (
	"encoding/json"
	"net/http"

	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/tallysdk"
)

type TasksHandler struct {
	UserService *service.UserService
	TaskService *service.TaskService
}

// HandleCreate godoc
//
//	@Summary		Create a task
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Project ID"
//	@Param			request	body		tallysdk.CreateTaskRequest	true	"Task"
//	@Success		201		{object}	tallysdk.Task
//	@Failure		400		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/projects/{id}/tasks [post].
func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	t, err := h.TaskService.Create(ctx, r.PathValue("id"), caller.ID, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toTask(t))
}

// HandleList godoc
//
//	@Summary		List a project's tasks
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path	string	true	"Project ID"
//	@Success		200	{array}	tallysdk.Task
//	@Router			/v1/projects/{id}/tasks [get].
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	tasks, err := h.TaskService.ListForProject(ctx, r.PathValue("id"), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tallysdk.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTask(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdate godoc
//
//	@Summary		Update a task
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Task ID"
//	@Param			request	body		tallysdk.UpdateTaskRequest	true	"Task"
//	@Success		200		{object}	tallysdk.Task
//	@Router			/v1/tasks/{id} [patch].
func (h *TasksHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	t, err := h.TaskService.Update(ctx, r.PathValue("id"), caller.ID, req.Name, req.Done)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toTask(t))
}

// HandleDelete godoc
//
//	@Summary		Delete a task
//	@Description	Removes a task. Time entries pointing at it keep their hours
//	@Description	and fall back to the placeholder task bucket in reports.
//	@Tags			Tasks
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Task ID"
//	@Success		204	{string}	string	"no content"
//	@Router			/v1/tasks/{id} [delete].
func (h *TasksHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.TaskService.Delete(ctx, r.PathValue("id"), caller.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
