package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

const MaxProjectTitleLength = 200

// ProjectInput is the editable part of a project.
type ProjectInput struct {
	Title       string
	Description string
	StartTime   string
	EndTime     string
	TechStack   string
}

type ProjectService struct {
	repo   repository.ProjectRepository
	logger *slog.Logger
}

func NewProjectService(repo repository.ProjectRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{repo: repo, logger: logger}
}

func (s *ProjectService) Create(ctx context.Context, userID string, in ProjectInput) (*model.Project, error) {
	if err := validateProject(in); err != nil {
		return nil, err
	}

	project := &model.Project{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		TechStack:   in.TechStack,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("service/project: creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("userID", userID),
		slog.String("projectID", project.ID),
	)
	return project, nil
}

// Get returns the project only when userID owns it.
func (s *ProjectService) Get(ctx context.Context, userID, id string) (*model.Project, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}
	project, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("service/project: getting project %s: %w", id, err)
	}
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]model.Project, error) {
	projects, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/project: listing projects: %w", err)
	}
	return projects, nil
}

// Update overwrites every editable field of the project.
func (s *ProjectService) Update(ctx context.Context, userID, id string, in ProjectInput) error {
	if id == "" {
		return apperror.ValidationFailed("id", "project ID is required")
	}
	if err := validateProject(in); err != nil {
		return err
	}

	project := &model.Project{
		ID:          id,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		TechStack:   in.TechStack,
	}
	if err := s.repo.Update(ctx, project); err != nil {
		return fmt.Errorf("service/project: updating project %s: %w", id, err)
	}
	return nil
}

// Delete removes the project. The UI calls this "complete".
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "project ID is required")
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service/project: deleting project %s: %w", id, err)
	}

	s.logger.Info("project deleted",
		slog.String("userID", userID),
		slog.String("projectID", id),
	)
	return nil
}

// validateProject checks the title and leaves every field exactly as
// submitted, whitespace included.
func validateProject(in ProjectInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperror.ValidationFailed("projectTitle", "project title is required")
	}
	if utf8.RuneCountInString(in.Title) > MaxProjectTitleLength {
		return apperror.ValidationFailed("projectTitle",
			fmt.Sprintf("project title must be %d characters or less", MaxProjectTitleLength))
	}
	return nil
}
