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
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectArchived    = errors.New("project is archived")
)

type ProjectService struct {
	Store store.Store
	Teams *TeamService
}

// Create adds a project to a team. Any member may create projects.
func (s *ProjectService) Create(ctx context.Context, teamID, callerID, name, description string) (domain.Project, error) {
	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return domain.Project{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, ErrInvalidProjectName
	}

	now := time.Now().UTC()
	p := domain.Project{
		ID:          idx.New().String(),
		TeamID:      teamID,
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Projects().CreateProject(ctx, p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// Get returns a project, requiring team membership.
func (s *ProjectService) Get(ctx context.Context, projectID, callerID string) (domain.Project, error) {
	p, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Project{}, ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, err
	}
	if _, err := s.Teams.RequireMember(ctx, p.TeamID, callerID); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// ListForTeam returns a team's projects, requiring membership.
func (s *ProjectService) ListForTeam(ctx context.Context, teamID, callerID string) ([]domain.Project, error) {
	if _, err := s.Teams.RequireMember(ctx, teamID, callerID); err != nil {
		return nil, err
	}
	return s.Store.Projects().ListProjectsForTeam(ctx, teamID)
}

// Update mutates name, description and archived flag. Admin only.
func (s *ProjectService) Update(ctx context.Context, projectID, callerID, name, description string, archived bool) (domain.Project, error) {
	p, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Project{}, ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.Teams.RequireAdmin(ctx, p.TeamID, callerID); err != nil {
		return domain.Project{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Project{}, ErrInvalidProjectName
	}

	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.Archived = archived
	if err := s.Store.Projects().UpdateProject(ctx, p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// Delete removes a project and cascades to its tasks. Admin only.
func (s *ProjectService) Delete(ctx context.Context, projectID, callerID string) error {
	p, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProjectNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Teams.RequireAdmin(ctx, p.TeamID, callerID); err != nil {
		return err
	}
	return s.Store.Projects().DeleteProject(ctx, projectID)
}
