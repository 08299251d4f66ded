package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/slogx"
)

type ReportsHandler struct {
	UserService   *service.UserService
	ReportService *service.ReportService
}

// timeRange parses optional from/to query params. Zero values mean unbounded.
func timeRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
	}
	return
}

// HandleDashboard godoc
//
//	@Summary		Team dashboard report
//	@Description	Aggregates the team's time entries into totals, per-project
//	@Description	and per-member breakdowns and a per-month hours series.
//	@Tags			Reports
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id		path		string	true	"Team ID"
//	@Param			from	query		string	false	"RFC3339 inclusive lower bound"
//	@Param			to		query		string	false	"RFC3339 exclusive upper bound"
//	@Success		200		{object}	tallysdk.ReportSummary
//	@Router			/v1/teams/{id}/dashboard [get].
func (h *ReportsHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	from, to, err := timeRange(r)
	if err != nil {
		writeBadRequest(w, "from and to must be RFC3339")
		return
	}

	sum, err := h.ReportService.Dashboard(ctx, r.PathValue("id"), caller.ID, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSummary(sum))
}

// HandleProjectReport godoc
//
//	@Summary		Project report
//	@Description	Aggregates one project's time entries into per-member and
//	@Description	per-task breakdowns.
//	@Tags			Reports
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id		path		string	true	"Project ID"
//	@Param			from	query		string	false	"RFC3339 inclusive lower bound"
//	@Param			to		query		string	false	"RFC3339 exclusive upper bound"
//	@Success		200		{object}	tallysdk.ReportSummary
//	@Router			/v1/projects/{id}/report [get].
func (h *ReportsHandler) HandleProjectReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	from, to, err := timeRange(r)
	if err != nil {
		writeBadRequest(w, "from and to must be RFC3339")
		return
	}

	sum, err := h.ReportService.ProjectReport(ctx, r.PathValue("id"), caller.ID, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSummary(sum))
}

// HandleExportCSV godoc
//
//	@Summary		Export a team's entries as CSV
//	@Description	Streams every entry in the range plus per-project, per-member
//	@Description	and per-task totals as a CSV download.
//	@Tags			Reports
//	@Security		BearerAuth
//	@Produce		text/csv
//	@Param			id		path		string	true	"Team ID"
//	@Param			from	query		string	false	"RFC3339 inclusive lower bound"
//	@Param			to		query		string	false	"RFC3339 exclusive upper bound"
//	@Success		200		{string}	string	"CSV payload"
//	@Router			/v1/teams/{id}/export.csv [get].
func (h *ReportsHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	from, to, err := timeRange(r)
	if err != nil {
		writeBadRequest(w, "from and to must be RFC3339")
		return
	}

	// Buffered so authorization failures still map to a proper error
	// response instead of a truncated download.
	var buf bytes.Buffer
	if err := h.ReportService.ExportCSV(ctx, &buf, r.PathValue("id"), caller.ID, from, to); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="time-report.csv"`)
	if _, err := buf.WriteTo(w); err != nil {
		slogx.FromContext(ctx).Error("csv export write failed", "err", err)
	}
}
