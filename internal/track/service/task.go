package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tally-team/tally/internal/track/domain"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/pkg/idx"
)

var (
	ErrInvalidTaskName = errors.New("invalid task name")
	ErrTaskNotFound    = errors.New("task not found")
)

type TaskService struct {
	Store    store.Store
	Teams    *TeamService
	Projects *ProjectService
}

// Create adds a task to a project. Any team member may create tasks;
// archived projects refuse new ones.
func (s *TaskService) Create(ctx context.Context, projectID, callerID, name string) (domain.Task, error) {
	p, err := s.Projects.Get(ctx, projectID, callerID)
	if err != nil {
		return domain.Task{}, err
	}
	if p.Archived {
		return domain.Task{}, ErrProjectArchived
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Task{}, ErrInvalidTaskName
	}

	now := time.Now().UTC()
	task := domain.Task{
		ID:        idx.New().String(),
		ProjectID: projectID,
		Name:      name,
		CreatedBy: callerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Tasks().CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// ListForProject returns a project's tasks, requiring team membership.
func (s *TaskService) ListForProject(ctx context.Context, projectID, callerID string) ([]domain.Task, error) {
	if _, err := s.Projects.Get(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	return s.Store.Tasks().ListTasksForProject(ctx, projectID)
}

// Update mutates the task name and done flag.
func (s *TaskService) Update(ctx context.Context, taskID, callerID, name string, done bool) (domain.Task, error) {
	task, err := s.get(ctx, taskID, callerID)
	if err != nil {
		return domain.Task{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Task{}, ErrInvalidTaskName
	}

	task.Name = name
	task.Done = done
	if err := s.Store.Tasks().UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// Delete removes a task. Entries referencing it keep their hours; the
// schema nulls the reference and reports fall back to their placeholder.
func (s *TaskService) Delete(ctx context.Context, taskID, callerID string) error {
	if _, err := s.get(ctx, taskID, callerID); err != nil {
		return err
	}
	return s.Store.Tasks().DeleteTask(ctx, taskID)
}

func (s *TaskService) get(ctx context.Context, taskID, callerID string) (domain.Task, error) {
	task, err := s.Store.Tasks().GetTaskByID(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}
	if _, err := s.Projects.Get(ctx, task.ProjectID, callerID); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}
