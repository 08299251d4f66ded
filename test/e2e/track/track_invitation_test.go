package track_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tally-team/tally/pkg/tallysdk"
)

// TestInvitationFlow walks the full membership path: an admin invites an
// email address, the invitee previews the link, accepts, and shows up in the
// member list with the invited role.
func TestInvitationFlow(t *testing.T) {
	baseURL := setupServer(t)

	admin, _ := loginAs(t, baseURL, "sub-admin", "admin@example.com", "Admin")
	team, err := admin.CreateTeam(t.Context(), "Acme")
	require.NoError(t, err)

	inv, err := admin.Invite(t.Context(), team.ID, "new.hire@example.com", "member")
	require.NoError(t, err)
	require.NotEmpty(t, inv.Token, "issuing admin should receive the raw token")
	require.Contains(t, inv.Link, "token=", "link should embed the token")
	require.Contains(t, inv.Link, team.ID)

	// Public preview needs no credentials.
	anon := tallysdk.NewClient(baseURL)
	preview, err := anon.VerifyInvitation(t.Context(), team.ID, inv.Token)
	require.NoError(t, err)
	require.True(t, preview.Valid)
	require.False(t, preview.Expired)
	require.Equal(t, "new.hire@example.com", preview.Email)
	require.Equal(t, "Acme", preview.TeamName)

	// Accepting requires logging in with the invited email.
	hire, hireUser := loginAs(t, baseURL, "sub-hire", "new.hire@example.com", "New Hire")
	member, err := hire.AcceptInvitation(t.Context(), inv.Token)
	require.NoError(t, err)
	require.Equal(t, hireUser.ID, member.UserID)
	require.Equal(t, "member", member.Role)

	members, err := admin.ListMembers(t.Context(), team.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

// TestInvitationEmailBinding verifies a token minted for one address cannot
// be redeemed by an account holding a different one.
func TestInvitationEmailBinding(t *testing.T) {
	baseURL := setupServer(t)

	admin, _ := loginAs(t, baseURL, "sub-admin", "admin@example.com", "Admin")
	team, err := admin.CreateTeam(t.Context(), "Acme")
	require.NoError(t, err)

	inv, err := admin.Invite(t.Context(), team.ID, "alice@example.com", "member")
	require.NoError(t, err)

	mallory, _ := loginAs(t, baseURL, "sub-mallory", "mallory@example.com", "Mallory")
	_, err = mallory.AcceptInvitation(t.Context(), inv.Token)

	var apiErr *tallysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 403, apiErr.StatusCode)

	members, err := admin.ListMembers(t.Context(), team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1, "mallory must not have joined")
}

// TestInvitationTampering verifies forged and truncated tokens are rejected
// with the generic invalid code rather than anything distinguishing.
func TestInvitationTampering(t *testing.T) {
	baseURL := setupServer(t)

	admin, _ := loginAs(t, baseURL, "sub-admin", "admin@example.com", "Admin")
	team, err := admin.CreateTeam(t.Context(), "Acme")
	require.NoError(t, err)

	inv, err := admin.Invite(t.Context(), team.ID, "alice@example.com", "member")
	require.NoError(t, err)

	anon := tallysdk.NewClient(baseURL)
	for name, token := range map[string]string{
		"garbage":   "not-a-token",
		"truncated": inv.Token[:len(inv.Token)-4],
	} {
		_, err := anon.VerifyInvitation(t.Context(), team.ID, token)

		var apiErr *tallysdk.APIError
		require.ErrorAs(t, err, &apiErr, name)
		require.Equal(t, 400, apiErr.StatusCode, name)
		require.Equal(t, "invalid_invitation", apiErr.Code, name)
	}
}

// TestInvitationRevocation checks an admin can withdraw a pending invite and
// the token stops verifying afterwards.
func TestInvitationRevocation(t *testing.T) {
	baseURL := setupServer(t)

	admin, _ := loginAs(t, baseURL, "sub-admin", "admin@example.com", "Admin")
	team, err := admin.CreateTeam(t.Context(), "Acme")
	require.NoError(t, err)

	inv, err := admin.Invite(t.Context(), team.ID, "alice@example.com", "member")
	require.NoError(t, err)

	listed, err := admin.ListInvitations(t.Context(), team.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Empty(t, listed[0].Token, "listing must not replay tokens")

	require.NoError(t, admin.RevokeInvitation(t.Context(), team.ID, inv.ID))

	anon := tallysdk.NewClient(baseURL)
	_, err = anon.VerifyInvitation(t.Context(), team.ID, inv.Token)

	var apiErr *tallysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "invalid_invitation", apiErr.Code)
}
