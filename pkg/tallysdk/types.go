package tallysdk

import "time"

// ErrorResponse is the error envelope every endpoint uses.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "invalid_request",
	// "invitation_expired")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// User is a profile backed by the external identity provider.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type UpdateTeamRequest struct {
	Name string `json:"name"`
}

type TeamMember struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type UpdateMemberRequest struct {
	Role string `json:"role"`
}

type Project struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"team_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Archived    bool   `json:"archived"`
}

type Task struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateTaskRequest struct {
	Name string `json:"name"`
}

type UpdateTaskRequest struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// TimeEntry is one logged unit of work. EndTime omitted means the entry is
// still running; DurationSeconds then reflects time elapsed so far.
type TimeEntry struct {
	ID              string     `json:"id"`
	TeamID          string     `json:"team_id"`
	ProjectID       string     `json:"project_id"`
	ProjectName     string     `json:"project_name,omitempty"`
	TaskID          *string    `json:"task_id,omitempty"`
	TaskName        string     `json:"task_name,omitempty"`
	UserID          string     `json:"user_id"`
	UserName        string     `json:"user_name,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	BreakMinutes    int        `json:"break_minutes"`
	Note            string     `json:"note,omitempty"`
	Running         bool       `json:"running"`
	DurationSeconds int64      `json:"duration_seconds"`
}

type CreateEntryRequest struct {
	TeamID       string     `json:"team_id"`
	ProjectID    string     `json:"project_id"`
	TaskID       *string    `json:"task_id,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	BreakMinutes int        `json:"break_minutes"`
	Note         string     `json:"note,omitempty"`
}

type StartEntryRequest struct {
	TeamID    string  `json:"team_id"`
	ProjectID string  `json:"project_id"`
	TaskID    *string `json:"task_id,omitempty"`
	Note      string  `json:"note,omitempty"`
}

type UpdateEntryRequest struct {
	ProjectID    string     `json:"project_id"`
	TaskID       *string    `json:"task_id,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	BreakMinutes int        `json:"break_minutes"`
	Note         string     `json:"note,omitempty"`
}

type InviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Invitation is returned to admins. Token is the full encoded invitation
// token; Link is a ready-to-send invite URL embedding it.
type Invitation struct {
	ID         string     `json:"id"`
	TeamID     string     `json:"team_id"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Token      string     `json:"token,omitempty"`
	Link       string     `json:"link,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// VerifyInvitationResponse is the public preview of an invite link. Expired
// invitations still carry email and expires_at so the page can say whose
// invite it was and offer a resend.
type VerifyInvitationResponse struct {
	Valid     bool      `json:"valid"`
	Expired   bool      `json:"expired"`
	Accepted  bool      `json:"accepted"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	TeamID    string    `json:"team_id,omitempty"`
	TeamName  string    `json:"team_name,omitempty"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token"`
}

// ReportBucket is one breakdown row. Total is the same value as
// TotalSeconds rendered HH:MM:SS.
type ReportBucket struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TotalSeconds int64   `json:"total_seconds"`
	Total        string  `json:"total"`
	Percent      float64 `json:"percent"`
}

// ReportSummary is the aggregate payload behind the dashboard and project
// report endpoints. ByMonth maps month number (1-12) to fractional hours.
type ReportSummary struct {
	TotalSeconds int64           `json:"total_seconds"`
	Total        string          `json:"total"`
	TotalHuman   string          `json:"total_human"`
	ByProject    []ReportBucket  `json:"by_project,omitempty"`
	ByUser       []ReportBucket  `json:"by_user,omitempty"`
	ByTask       []ReportBucket  `json:"by_task,omitempty"`
	ByMonth      map[int]float64 `json:"by_month,omitempty"`
}

// HealthChecks reports per-dependency status on the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
