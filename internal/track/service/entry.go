package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/idx"
	"github.com/tally-team/tally/pkg/slogx"
)

var (
	ErrEntryNotFound       = errors.New("entry not found")
	ErrEntryNotYours       = errors.New("entry belongs to another user")
	ErrInvalidEntryTimes   = errors.New("end must be after start")
	ErrInvalidBreak        = errors.New("break minutes must not be negative")
	ErrTaskProjectMismatch = errors.New("task does not belong to the project")
	ErrTimerAlreadyRunning = errors.New("a timer is already running")
	ErrNoRunningTimer      = errors.New("no timer is running")
)

type EntryService struct {
	Store store.Store
	Teams *TeamService
}

// EntryInput carries the writable fields of a time entry.
type EntryInput struct {
	ProjectID    string
	TaskID       *string
	StartTime    time.Time
	EndTime      *time.Time
	BreakMinutes int
	Note         string
}

// Log records a completed entry for the caller.
func (s *EntryService) Log(ctx context.Context, teamID, callerID string, in EntryInput) (domain.TimeEntry, error) {
	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return domain.TimeEntry{}, err
	}
	if err := s.validate(ctx, teamID, in); err != nil {
		return domain.TimeEntry{}, err
	}

	now := time.Now().UTC()
	e := domain.TimeEntry{
		ID:           idx.New().String(),
		TeamID:       teamID,
		ProjectID:    in.ProjectID,
		TaskID:       in.TaskID,
		UserID:       callerID,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		BreakMinutes: in.BreakMinutes,
		Note:         strings.TrimSpace(in.Note),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Entries().CreateEntry(ctx, e); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.TimeEntry{}, ErrTimerAlreadyRunning
		}
		return domain.TimeEntry{}, err
	}
	return s.Store.Entries().GetEntryByID(ctx, e.ID)
}

// Start opens a running entry for the caller. At most one per team; the
// store's partial unique index backstops concurrent starts.
func (s *EntryService) Start(ctx context.Context, teamID, callerID string, in EntryInput) (domain.TimeEntry, error) {
	log := slogx.FromContext(ctx)

	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return domain.TimeEntry{}, err
	}

	if in.StartTime.IsZero() {
		in.StartTime = time.Now().UTC()
	}
	in.EndTime = nil
	if err := s.validate(ctx, teamID, in); err != nil {
		return domain.TimeEntry{}, err
	}

	if _, err := s.Store.Entries().GetRunningEntry(ctx, teamID, callerID); err == nil {
		return domain.TimeEntry{}, ErrTimerAlreadyRunning
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.TimeEntry{}, err
	}

	now := time.Now().UTC()
	e := domain.TimeEntry{
		ID:           idx.New().String(),
		TeamID:       teamID,
		ProjectID:    in.ProjectID,
		TaskID:       in.TaskID,
		UserID:       callerID,
		StartTime:    in.StartTime,
		BreakMinutes: in.BreakMinutes,
		Note:         strings.TrimSpace(in.Note),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Entries().CreateEntry(ctx, e); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.TimeEntry{}, ErrTimerAlreadyRunning
		}
		log.Error("failed to start timer", slog.Any("error", err))
		return domain.TimeEntry{}, err
	}

	log.Info("started timer",
		slog.String("entry_id", e.ID),
		slog.String("team_id", teamID),
		slog.String("user_id", callerID),
	)
	return s.Store.Entries().GetEntryByID(ctx, e.ID)
}

// Stop closes the caller's running entry in a team.
func (s *EntryService) Stop(ctx context.Context, teamID, callerID string) (domain.TimeEntry, error) {
	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return domain.TimeEntry{}, err
	}

	running, err := s.Store.Entries().GetRunningEntry(ctx, teamID, callerID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TimeEntry{}, ErrNoRunningTimer
	}
	if err != nil {
		return domain.TimeEntry{}, err
	}

	end := time.Now().UTC()
	if !end.After(running.StartTime) {
		end = running.StartTime.Add(time.Second)
	}
	if err := s.Store.Entries().StopEntry(ctx, running.ID, end); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TimeEntry{}, ErrNoRunningTimer
		}
		return domain.TimeEntry{}, err
	}
	return s.Store.Entries().GetEntryByID(ctx, running.ID)
}

// Running returns the caller's open entry in a team, if any.
func (s *EntryService) Running(ctx context.Context, teamID, callerID string) (domain.TimeEntry, error) {
	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return domain.TimeEntry{}, err
	}
	e, err := s.Store.Entries().GetRunningEntry(ctx, teamID, callerID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TimeEntry{}, ErrNoRunningTimer
	}
	return e, err
}

// Update rewrites an entry's writable fields. Owners edit their own
// entries; team admins may fix up anyone's.
func (s *EntryService) Update(ctx context.Context, entryID, callerID string, in EntryInput) (domain.TimeEntry, error) {
	e, err := s.authorize(ctx, entryID, callerID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if err := s.validate(ctx, e.TeamID, in); err != nil {
		return domain.TimeEntry{}, err
	}

	e.ProjectID = in.ProjectID
	e.TaskID = in.TaskID
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.BreakMinutes = in.BreakMinutes
	e.Note = strings.TrimSpace(in.Note)

	if err := s.Store.Entries().UpdateEntry(ctx, e); err != nil {
		return domain.TimeEntry{}, err
	}
	return s.Store.Entries().GetEntryByID(ctx, entryID)
}

// Delete removes an entry. Same ownership rule as Update.
func (s *EntryService) Delete(ctx context.Context, entryID, callerID string) error {
	if _, err := s.authorize(ctx, entryID, callerID); err != nil {
		return err
	}
	return s.Store.Entries().DeleteEntry(ctx, entryID)
}

// List returns a team's entries filtered by optional project, user and time
// range. Any member may read the whole team's log.
func (s *EntryService) List(ctx context.Context, teamID, callerID string, f store.EntryFilter) ([]domain.TimeEntry, error) {
	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return nil, err
	}
	f.TeamID = teamID
	return s.Store.Entries().ListEntries(ctx, f)
}

// authorize fetches the entry and checks the caller may modify it.
func (s *EntryService) authorize(ctx context.Context, entryID, callerID string) (domain.TimeEntry, error) {
	e, err := s.Store.Entries().GetEntryByID(ctx, entryID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TimeEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return domain.TimeEntry{}, err
	}

	caller, err := s.Teams.RequireMember(ctx, e.TeamID, callerID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if e.UserID != callerID && !caller.IsAdmin() {
		return domain.TimeEntry{}, ErrEntryNotYours
	}
	return e, nil
}

// validate checks the input against the team: the project must belong to
// the team, any task to the project, and the times must make sense.
func (s *EntryService) validate(ctx context.Context, teamID string, in EntryInput) error {
	if in.StartTime.IsZero() {
		return ErrInvalidEntryTimes
	}
	if in.EndTime != nil && !in.EndTime.After(in.StartTime) {
		return ErrInvalidEntryTimes
	}
	if in.BreakMinutes < 0 {
		return ErrInvalidBreak
	}

	p, err := s.Store.Projects().GetProjectByID(ctx, in.ProjectID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProjectNotFound
	}
	if err != nil {
		return err
	}
	if p.TeamID != teamID {
		return ErrProjectNotFound
	}

	if in.TaskID != nil {
		task, err := s.Store.Tasks().GetTaskByID(ctx, *in.TaskID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		if task.ProjectID != in.ProjectID {
			return ErrTaskProjectMismatch
		}
	}
	return nil
}
