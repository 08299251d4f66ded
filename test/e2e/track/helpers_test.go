package track_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	httpapi "github.com/tally-team/tally/internal/track/http"
	"github.com/tally-team/tally/internal/track/invite"
	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/internal/track/store/drivers/sqlite"
	"github.com/tally-team/tally/pkg/jwtx"
	"github.com/tally-team/tally/pkg/slogx"
	"github.com/tally-team/tally/pkg/tallysdk"
)

/*
 * Common helpers for tracking service end-to-end tests. The whole stack runs
 * in-process: SQLite in memory behind the real store, real services, the real
 * router behind httptest, exercised through the public SDK client.
 */

const (
	testJWTSecret    = "e2e-jwt-secret"
	testInviteSecret = "e2e-invite-secret"
	testIssuer       = "tally-idp-test"
	testLinkBase     = "https://tally.test/invite"
)

// setupServer starts the full HTTP stack over an in-memory database and
// returns its base URL. The server and store are torn down with the test.
func setupServer(t *testing.T) string {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := invite.NewCodec(testInviteSecret)
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{Service: "tally-e2e", Level: "error", Format: "text"})

	userService := &service.UserService{Store: st}
	teamService := &service.TeamService{Store: st}
	projectService := &service.ProjectService{Store: st, Teams: teamService}
	taskService := &service.TaskService{Store: st, Teams: teamService, Projects: projectService}
	entryService := &service.EntryService{Store: st, Teams: teamService}
	invitationService := &service.InvitationService{Store: st, Teams: teamService, Codec: codec}
	reportService := &service.ReportService{Store: st, Teams: teamService, Projects: projectService}

	verifier := jwtx.NewHS256Verifier([]byte(testJWTSecret), testIssuer)
	router := httpapi.NewRouter(verifier, "e2e", testLinkBase, st, logger)
	router.UserService = userService
	router.TeamService = teamService
	router.ProjectService = projectService
	router.TaskService = taskService
	router.EntryService = entryService
	router.InvitationService = invitationService
	router.ReportService = reportService
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server.URL
}

// signToken mints an identity-provider token for a synthetic subject.
func signToken(t *testing.T, subject, email, name string) string {
	t.Helper()

	claims := jwtx.NewClaims(subject, email, name, testIssuer, time.Hour, time.Now())
	token, err := jwtx.SignHS256(claims, []byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

// loginAs registers a profile for the subject and returns an authenticated
// client plus the registered user.
func loginAs(t *testing.T, baseURL, subject, email, name string) (*tallysdk.Client, tallysdk.User) {
	t.Helper()

	client := tallysdk.NewClient(baseURL).WithToken(signToken(t, subject, email, name))
	user, err := client.Register(t.Context())
	require.NoError(t, err)
	require.Equal(t, email, user.Email)
	return client, user
}
