package tallysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is the typed form of the service's error envelope. It carries the
// HTTP status alongside the machine-readable code.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Description, e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Code, e.StatusCode)
}

// Client is a thin typed client for the tracking service. Token is sent as a
// bearer credential on every request; leave it empty for the public endpoints.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// NewClient creates a client against baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithToken returns a shallow copy of the client authenticating as token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, expected int) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown_error"}
		var envelope ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			apiErr.Code = envelope.Error
			apiErr.Description = envelope.ErrorDescription
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Register provisions (or refreshes) the caller's profile from their token.
func (c *Client) Register(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodPost, "/v1/users/register", nil, &u, http.StatusOK)
	return u, err
}

func (c *Client) UserInfo(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/v1/userinfo", nil, &u, http.StatusOK)
	return u, err
}

func (c *Client) CreateTeam(ctx context.Context, name string) (Team, error) {
	var t Team
	err := c.do(ctx, http.MethodPost, "/v1/teams", CreateTeamRequest{Name: name}, &t, http.StatusCreated)
	return t, err
}

func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	err := c.do(ctx, http.MethodGet, "/v1/teams", nil, &teams, http.StatusOK)
	return teams, err
}

func (c *Client) GetTeam(ctx context.Context, teamID string) (Team, error) {
	var t Team
	err := c.do(ctx, http.MethodGet, "/v1/teams/"+teamID, nil, &t, http.StatusOK)
	return t, err
}

func (c *Client) RenameTeam(ctx context.Context, teamID, name string) error {
	return c.do(ctx, http.MethodPatch, "/v1/teams/"+teamID, UpdateTeamRequest{Name: name}, nil, http.StatusNoContent)
}

func (c *Client) DeleteTeam(ctx context.Context, teamID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/teams/"+teamID, nil, nil, http.StatusNoContent)
}

func (c *Client) ListMembers(ctx context.Context, teamID string) ([]TeamMember, error) {
	var members []TeamMember
	err := c.do(ctx, http.MethodGet, "/v1/teams/"+teamID+"/members", nil, &members, http.StatusOK)
	return members, err
}

func (c *Client) UpdateMemberRole(ctx context.Context, teamID, userID, role string) error {
	return c.do(ctx, http.MethodPatch, "/v1/teams/"+teamID+"/members/"+userID,
		UpdateMemberRequest{Role: role}, nil, http.StatusNoContent)
}

func (c *Client) RemoveMember(ctx context.Context, teamID, userID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/teams/"+teamID+"/members/"+userID, nil, nil, http.StatusNoContent)
}

func (c *Client) CreateProject(ctx context.Context, teamID string, req CreateProjectRequest) (Project, error) {
	var p Project
	err := c.do(ctx, http.MethodPost, "/v1/teams/"+teamID+"/projects", req, &p, http.StatusCreated)
	return p, err
}

func (c *Client) ListProjects(ctx context.Context, teamID string) ([]Project, error) {
	var projects []Project
	err := c.do(ctx, http.MethodGet, "/v1/teams/"+teamID+"/projects", nil, &projects, http.StatusOK)
	return projects, err
}

func (c *Client) UpdateProject(ctx context.Context, projectID string, req UpdateProjectRequest) (Project, error) {
	var p Project
	err := c.do(ctx, http.MethodPatch, "/v1/projects/"+projectID, req, &p, http.StatusOK)
	return p, err
}

func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/projects/"+projectID, nil, nil, http.StatusNoContent)
}

func (c *Client) CreateTask(ctx context.Context, projectID, name string) (Task, error) {
	var t Task
	err := c.do(ctx, http.MethodPost, "/v1/projects/"+projectID+"/tasks",
		CreateTaskRequest{Name: name}, &t, http.StatusCreated)
	return t, err
}

func (c *Client) ListTasks(ctx context.Context, projectID string) ([]Task, error) {
	var tasks []Task
	err := c.do(ctx, http.MethodGet, "/v1/projects/"+projectID+"/tasks", nil, &tasks, http.StatusOK)
	return tasks, err
}

func (c *Client) UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) (Task, error) {
	var t Task
	err := c.do(ctx, http.MethodPatch, "/v1/tasks/"+taskID, req, &t, http.StatusOK)
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/tasks/"+taskID, nil, nil, http.StatusNoContent)
}

func (c *Client) LogEntry(ctx context.Context, req CreateEntryRequest) (TimeEntry, error) {
	var e TimeEntry
	err := c.do(ctx, http.MethodPost, "/v1/entries", req, &e, http.StatusCreated)
	return e, err
}

func (c *Client) StartEntry(ctx context.Context, req StartEntryRequest) (TimeEntry, error) {
	var e TimeEntry
	err := c.do(ctx, http.MethodPost, "/v1/entries/start", req, &e, http.StatusCreated)
	return e, err
}

func (c *Client) StopEntry(ctx context.Context, teamID string) (TimeEntry, error) {
	var e TimeEntry
	err := c.do(ctx, http.MethodPost, "/v1/teams/"+teamID+"/entries/stop", nil, &e, http.StatusOK)
	return e, err
}

func (c *Client) RunningEntry(ctx context.Context, teamID string) (TimeEntry, error) {
	var e TimeEntry
	err := c.do(ctx, http.MethodGet, "/v1/teams/"+teamID+"/entries/running", nil, &e, http.StatusOK)
	return e, err
}

// EntryListFilter narrows ListEntries. Zero values are omitted.
type EntryListFilter struct {
	ProjectID string
	UserID    string
	From      time.Time
	To        time.Time
	Running   bool
}

func (c *Client) ListEntries(ctx context.Context, teamID string, f EntryListFilter) ([]TimeEntry, error) {
	q := url.Values{}
	q.Set("teamId", teamID)
	if f.ProjectID != "" {
		q.Set("projectId", f.ProjectID)
	}
	if f.UserID != "" {
		q.Set("userId", f.UserID)
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.Format(time.RFC3339))
	}
	if f.Running {
		q.Set("running", "true")
	}

	var entries []TimeEntry
	err := c.do(ctx, http.MethodGet, "/v1/entries?"+q.Encode(), nil, &entries, http.StatusOK)
	return entries, err
}

func (c *Client) UpdateEntry(ctx context.Context, entryID string, req UpdateEntryRequest) (TimeEntry, error) {
	var e TimeEntry
	err := c.do(ctx, http.MethodPatch, "/v1/entries/"+entryID, req, &e, http.StatusOK)
	return e, err
}

func (c *Client) DeleteEntry(ctx context.Context, entryID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/entries/"+entryID, nil, nil, http.StatusNoContent)
}

func (c *Client) Invite(ctx context.Context, teamID, email, role string) (Invitation, error) {
	var inv Invitation
	err := c.do(ctx, http.MethodPost, "/v1/teams/"+teamID+"/invitations",
		InviteRequest{Email: email, Role: role}, &inv, http.StatusCreated)
	return inv, err
}

func (c *Client) ListInvitations(ctx context.Context, teamID string) ([]Invitation, error) {
	var invitations []Invitation
	err := c.do(ctx, http.MethodGet, "/v1/teams/"+teamID+"/invitations", nil, &invitations, http.StatusOK)
	return invitations, err
}

func (c *Client) RevokeInvitation(ctx context.Context, teamID, invitationID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/teams/"+teamID+"/invitations/"+invitationID,
		nil, nil, http.StatusNoContent)
}

// VerifyInvitation previews an invite token. Works without a bearer token;
// expired invitations come back with Valid=false rather than an error.
func (c *Client) VerifyInvitation(ctx context.Context, teamID, token string) (VerifyInvitationResponse, error) {
	q := url.Values{}
	q.Set("token", token)
	if teamID != "" {
		q.Set("teamId", teamID)
	}

	var res VerifyInvitationResponse
	err := c.do(ctx, http.MethodGet, "/v1/invitations/verify?"+q.Encode(), nil, &res, http.StatusOK)
	return res, err
}

func (c *Client) AcceptInvitation(ctx context.Context, token string) (TeamMember, error) {
	var m TeamMember
	err := c.do(ctx, http.MethodPost, "/v1/invitations/accept",
		AcceptInvitationRequest{Token: token}, &m, http.StatusOK)
	return m, err
}

func (c *Client) Dashboard(ctx context.Context, teamID string, from, to time.Time) (ReportSummary, error) {
	var sum ReportSummary
	err := c.do(ctx, http.MethodGet, "/v1/teams/"+teamID+"/dashboard"+rangeQuery(from, to), nil, &sum, http.StatusOK)
	return sum, err
}

func (c *Client) ProjectReport(ctx context.Context, projectID string, from, to time.Time) (ReportSummary, error) {
	var sum ReportSummary
	err := c.do(ctx, http.MethodGet, "/v1/projects/"+projectID+"/report"+rangeQuery(from, to), nil, &sum, http.StatusOK)
	return sum, err
}

// ExportCSV returns the raw CSV payload for a team's entries.
func (c *Client) ExportCSV(ctx context.Context, teamID string, from, to time.Time) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/v1/teams/"+teamID+"/export.csv"+rangeQuery(from, to), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown_error"}
		var envelope ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			apiErr.Code = envelope.Error
			apiErr.Description = envelope.ErrorDescription
		}
		return nil, apiErr
	}
	return raw, nil
}

func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var h HealthResponse
	err := c.do(ctx, http.MethodGet, "/readyz", nil, &h, http.StatusOK)
	return h, err
}

func rangeQuery(from, to time.Time) string {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(time.RFC3339))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
