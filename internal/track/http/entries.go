package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/tallysdk"
)

type EntriesHandler struct {
	UserService  *service.UserService
	EntryService *service.EntryService
}

// HandleLog godoc
//
//	@Summary		Log a time entry
//	@Description	Records a completed (or still open) entry for the caller.
//	@Tags			Entries
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tallysdk.CreateEntryRequest	true	"Entry"
//	@Success		201		{object}	tallysdk.TimeEntry
//	@Failure		400		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/entries [post].
func (h *EntriesHandler) HandleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	e, err := h.EntryService.Log(ctx, req.TeamID, caller.ID, service.EntryInput{
		ProjectID:    req.ProjectID,
		TaskID:       req.TaskID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Note:         req.Note,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toEntry(e, time.Now()))
}

// HandleStart godoc
//
//	@Summary		Start a timer
//	@Description	Opens a running entry for the caller. Only one entry per team
//	@Description	may be running at a time.
//	@Tags			Entries
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tallysdk.StartEntryRequest	true	"Timer"
//	@Success		201		{object}	tallysdk.TimeEntry
//	@Failure		409		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/entries/start [post].
func (h *EntriesHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.StartEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	e, err := h.EntryService.Start(ctx, req.TeamID, caller.ID, service.EntryInput{
		ProjectID: req.ProjectID,
		TaskID:    req.TaskID,
		Note:      req.Note,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toEntry(e, time.Now()))
}

// HandleStop godoc
//
//	@Summary		Stop the running timer
//	@Tags			Entries
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Team ID"
//	@Success		200	{object}	tallysdk.TimeEntry
//	@Failure		404	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id}/entries/stop [post].
func (h *EntriesHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	e, err := h.EntryService.Stop(ctx, r.PathValue("id"), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEntry(e, time.Now()))
}

// HandleRunning godoc
//
//	@Summary		Get the caller's running timer
//	@Tags			Entries
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Team ID"
//	@Success		200	{object}	tallysdk.TimeEntry
//	@Failure		404	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/teams/{id}/entries/running [get].
func (h *EntriesHandler) HandleRunning(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	e, err := h.EntryService.Running(ctx, r.PathValue("id"), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEntry(e, time.Now()))
}

// HandleList godoc
//
//	@Summary		List time entries
//	@Description	Lists entries for a team, newest first. Any member may read
//	@Description	the whole team's log.
//	@Tags			Entries
//	@Security		BearerAuth
//	@Produce		json
//	@Param			teamId		query	string	true	"Team ID"
//	@Param			projectId	query	string	false	"Limit to one project"
//	@Param			userId		query	string	false	"Limit to one member"
//	@Param			from		query	string	false	"RFC3339 inclusive lower bound"
//	@Param			to			query	string	false	"RFC3339 exclusive upper bound"
//	@Param			running		query	bool	false	"Only running entries"
//	@Success		200			{array}	tallysdk.TimeEntry
//	@Router			/v1/entries [get].
func (h *EntriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := store.EntryFilter{
		ProjectID: q.Get("projectId"),
		UserID:    q.Get("userId"),
		Running:   q.Get("running") == "true",
	}
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "from must be RFC3339")
			return
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "to must be RFC3339")
			return
		}
		filter.To = to
	}

	entries, err := h.EntryService.List(ctx, q.Get("teamId"), caller.ID, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEntries(entries, time.Now()))
}

// HandleUpdate godoc
//
//	@Summary		Update a time entry
//	@Description	Owners may edit their own entries; team admins may edit any.
//	@Tags			Entries
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Entry ID"
//	@Param			request	body		tallysdk.UpdateEntryRequest	true	"Entry"
//	@Success		200		{object}	tallysdk.TimeEntry
//	@Failure		403		{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/entries/{id} [patch].
func (h *EntriesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req tallysdk.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	e, err := h.EntryService.Update(ctx, r.PathValue("id"), caller.ID, service.EntryInput{
		ProjectID:    req.ProjectID,
		TaskID:       req.TaskID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		BreakMinutes: req.BreakMinutes,
		Note:         req.Note,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEntry(e, time.Now()))
}

// HandleDelete godoc
//
//	@Summary		Delete a time entry
//	@Tags			Entries
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Entry ID"
//	@Success		204	{string}	string	"no content"
//	@Failure		403	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/entries/{id} [delete].
func (h *EntriesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.EntryService.Delete(ctx, r.PathValue("id"), caller.ID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
