package http

import (
	"net/http"

	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/jwtx"
	"github.com/tally-team/tally/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleRegister godoc
//
//	@Summary		Register the authenticated user
//	@Description	Creates (or refreshes) the local profile for the subject, email and name carried in the bearer token. Idempotent; call after every identity provider login.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tallysdk.User			"id, email, name"
//	@Failure		400	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Failure		401	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/users/register [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := ctx.Value(httpx.CtxKeyClaims).(jwtx.Claims)
	if !ok || claims.Subject == "" {
		writeUnauthorized(w)
		return
	}

	u, err := h.UserService.Register(ctx, claims.Subject, claims.Email, claims.Name)
	if err != nil {
		log.Warn("register failed", "subject", claims.Subject, "err", err)
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}

// HandleUserInfo godoc
//
//	@Summary		Get user information
//	@Description	Returns the local profile of the authenticated user.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tallysdk.User			"id, email, name"
//	@Failure		401	{object}	tallysdk.ErrorResponse	"error, error_description"
//	@Router			/v1/userinfo [get].
func (h *UsersHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, err := currentUser(ctx, h.UserService)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}
