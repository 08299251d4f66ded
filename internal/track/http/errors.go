package http

import (
	"errors"
	"net/http"

	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/slogx"
	"github.com/tally-team/tally/pkg/tallysdk"
)

// writeServiceError maps service sentinels onto the wire. Invitation token
// failures deliberately collapse to one generic code: the response must not
// reveal whether a guess was malformed or just mis-signed. Expiry gets its
// own code because the UI offers a resend for it.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		code   string
		desc   string
	)

	switch {
	case errors.Is(err, errNotRegistered):
		status, code, desc = http.StatusUnauthorized, "not_registered", "No profile for this account; call register first"
	case errors.Is(err, service.ErrNotMember):
		status, code, desc = http.StatusForbidden, "not_member", "You are not a member of this team"
	case errors.Is(err, service.ErrNotAdmin):
		status, code, desc = http.StatusForbidden, "admin_required", "This operation requires team admin role"
	case errors.Is(err, service.ErrEntryNotYours):
		status, code, desc = http.StatusForbidden, "forbidden", "You may only modify your own entries"
	case errors.Is(err, service.ErrEmailMismatch):
		status, code, desc = http.StatusForbidden, "email_mismatch", "This invitation was issued for a different email address"

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrEntryNotFound):
		status, code, desc = http.StatusNotFound, "not_found", "The requested resource does not exist"
	case errors.Is(err, service.ErrNoRunningTimer):
		status, code, desc = http.StatusNotFound, "no_running_timer", "No timer is currently running"

	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidTeamName),
		errors.Is(err, service.ErrInvalidProjectName),
		errors.Is(err, service.ErrInvalidTaskName),
		errors.Is(err, service.ErrInvalidEntryTimes),
		errors.Is(err, service.ErrInvalidBreak),
		errors.Is(err, service.ErrTaskProjectMismatch),
		errors.Is(err, service.ErrProjectArchived):
		status, code, desc = http.StatusBadRequest, "invalid_request", err.Error()

	case errors.Is(err, service.ErrLastAdmin):
		status, code, desc = http.StatusConflict, "last_admin", "A team must keep at least one admin"
	case errors.Is(err, service.ErrTimerAlreadyRunning):
		status, code, desc = http.StatusConflict, "timer_running", "A timer is already running; stop it first"
	case errors.Is(err, service.ErrAlreadyMember):
		status, code, desc = http.StatusConflict, "already_member", "Already a member of this team"
	case errors.Is(err, service.ErrInvitationPending):
		status, code, desc = http.StatusConflict, "invitation_pending", "An invitation for this email is already pending"
	case errors.Is(err, service.ErrInvitationUsed):
		status, code, desc = http.StatusConflict, "invitation_used", "This invitation has already been accepted"

	case errors.Is(err, service.ErrInvitationExpired):
		status, code, desc = http.StatusGone, "invitation_expired", "This invitation has expired; ask a team admin to send a new one"
	case errors.Is(err, service.ErrInvitationInvalid),
		errors.Is(err, service.ErrInvitationNotFound):
		status, code, desc = http.StatusBadRequest, "invalid_invitation", "This invitation link is not valid"

	default:
		slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
		status, code, desc = http.StatusInternalServerError, "server_error", "Something went wrong"
	}

	httpx.WriteJSON(w, status, tallysdk.ErrorResponse{
		Error:            code,
		ErrorDescription: desc,
	})
}

func writeInvalidBody(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusBadRequest, tallysdk.ErrorResponse{
		Error:            "invalid_request",
		ErrorDescription: "Invalid JSON body",
	})
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	httpx.WriteJSON(w, http.StatusBadRequest, tallysdk.ErrorResponse{
		Error:            "invalid_request",
		ErrorDescription: desc,
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusUnauthorized, tallysdk.ErrorResponse{
		Error:            "unauthorized",
		ErrorDescription: "Authentication required",
	})
}
