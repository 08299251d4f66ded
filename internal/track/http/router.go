package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/httpx"
	"github.com/tally-team/tally/pkg/jwtx"
	"github.com/tally-team/tally/pkg/slogx"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/tally-team/tally/api/track" // Swagger docs
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	inviteLink   string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	UserService       *service.UserService
	TeamService       *service.TeamService
	ProjectService    *service.ProjectService
	TaskService       *service.TaskService
	EntryService      *service.EntryService
	InvitationService *service.InvitationService
	ReportService     *service.ReportService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion, inviteLink string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		inviteLink:   inviteLink,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerTeams()
	r.registerProjects()
	r.registerTasks()
	r.registerEntries()
	r.registerInvitations()
	r.registerReports()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tally Time Tracking API
//	@version		0.1.0
//	@description	Team time tracking: users form teams, create projects and
//	@description	tasks, log time entries against them and pull aggregate
//	@description	reports and CSV exports from the logged data.
//	@description
//	@description				Authentication is delegated to an external identity provider;
//	@description				every protected endpoint expects one of its HS256 JWTs.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps a handler with authentication and a per-user rate limit.
func (r *Router) secured(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier), // verify JWT (iss/exp)
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// POST /users/register - moderate limit (first-login provisioning)
	r.Mux.Handle("POST /v1/users/register",
		r.secured(http.HandlerFunc(h.HandleRegister), httpx.ModerateLimit))

	r.Mux.Handle("GET /v1/userinfo",
		r.secured(http.HandlerFunc(h.HandleUserInfo), httpx.LenientLimit))
}

func (r *Router) registerTeams() {
	h := &TeamsHandler{UserService: r.UserService, TeamService: r.TeamService}

	r.Mux.Handle("POST /v1/teams",
		r.secured(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/teams",
		r.secured(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/teams/{id}",
		r.secured(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/teams/{id}",
		r.secured(http.HandlerFunc(h.HandleRename), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/teams/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/teams/{id}/members",
		r.secured(http.HandlerFunc(h.HandleListMembers), httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/teams/{id}/members/{userID}",
		r.secured(http.HandlerFunc(h.HandleUpdateMember), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/teams/{id}/members/{userID}",
		r.secured(http.HandlerFunc(h.HandleRemoveMember), httpx.ModerateLimit))
}

func (r *Router) registerProjects() {
	h := &ProjectsHandler{UserService: r.UserService, ProjectService: r.ProjectService}

	r.Mux.Handle("POST /v1/teams/{id}/projects",
		r.secured(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/teams/{id}/projects",
		r.secured(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/projects/{id}",
		r.secured(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/projects/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
}

func (r *Router) registerTasks() {
	h := &TasksHandler{UserService: r.UserService, TaskService: r.TaskService}

	r.Mux.Handle("POST /v1/projects/{id}/tasks",
		r.secured(http.HandlerFunc(h.HandleCreate), httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/projects/{id}/tasks",
		r.secured(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/tasks/{id}",
		r.secured(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/tasks/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
}

func (r *Router) registerEntries() {
	h := &EntriesHandler{UserService: r.UserService, EntryService: r.EntryService}

	// Entry logging is the hot path, so it gets the lenient per-user limit.
	r.Mux.Handle("POST /v1/entries",
		r.secured(http.HandlerFunc(h.HandleLog), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/entries/start",
		r.secured(http.HandlerFunc(h.HandleStart), httpx.LenientLimit))
	r.Mux.Handle("POST /v1/teams/{id}/entries/stop",
		r.secured(http.HandlerFunc(h.HandleStop), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/teams/{id}/entries/running",
		r.secured(http.HandlerFunc(h.HandleRunning), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/entries",
		r.secured(http.HandlerFunc(h.HandleList), httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/entries/{id}",
		r.secured(http.HandlerFunc(h.HandleUpdate), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/entries/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{
		UserService:       r.UserService,
		InvitationService: r.InvitationService,
		LinkBase:          r.inviteLink,
	}

	// POST /teams/{id}/invitations - strict limit by user (admin operation)
	r.Mux.Handle("POST /v1/teams/{id}/invitations",
		r.secured(http.HandlerFunc(h.HandleIssue), httpx.StrictLimit))
	r.Mux.Handle("GET /v1/teams/{id}/invitations",
		r.secured(http.HandlerFunc(h.HandleList), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/teams/{id}/invitations/{invID}",
		r.secured(http.HandlerFunc(h.HandleRevoke), httpx.ModerateLimit))

	// GET /invitations/verify - public token preview, strict limit by IP to
	// keep token guessing expensive.
	r.Mux.Handle("GET /v1/invitations/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/invitations/accept",
		r.secured(http.HandlerFunc(h.HandleAccept), httpx.StrictLimit))
}

func (r *Router) registerReports() {
	h := &ReportsHandler{UserService: r.UserService, ReportService: r.ReportService}

	r.Mux.Handle("GET /v1/teams/{id}/dashboard",
		r.secured(http.HandlerFunc(h.HandleDashboard), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/projects/{id}/report",
		r.secured(http.HandlerFunc(h.HandleProjectReport), httpx.LenientLimit))
	r.Mux.Handle("GET /v1/teams/{id}/export.csv",
		r.secured(http.HandlerFunc(h.HandleExportCSV), httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
