// Package service holds the portal's business rules.
//
//	Handler (HTTP)  → parses forms, writes responses
//	Service         → validates, scopes by owner, orchestrates
//	Repository      → SQL
//
// Services take repository interfaces, never *sqlite.DB, so tests drive
// them with in-memory fakes. They return *apperror.AppError for anything the
// user can fix and wrap everything else with the operation that failed.
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

const MaxTaskNameLength = 200

// ErrNoTaskName is the message shown when a task is submitted blank.
const ErrNoTaskName = "No task name provided"

// TodoService manages a user's to-do list.
type TodoService struct {
	repo   repository.TodoRepository
	logger *slog.Logger
}

func NewTodoService(repo repository.TodoRepository, logger *slog.Logger) *TodoService {
	return &TodoService{repo: repo, logger: logger}
}

// Create adds a task for userID. A blank name is rejected before anything
// is written.
func (s *TodoService) Create(ctx context.Context, userID, name string) (*model.TodoTask, error) {
	name, err := validateTaskName(name)
	if err != nil {
		return nil, err
	}

	task := &model.TodoTask{UserID: userID, Name: name}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("service/todo: creating task: %w", err)
	}

	s.logger.Info("todo task created",
		slog.String("userID", userID),
		slog.String("taskID", task.ID),
	)
	return task, nil
}

// Get returns one of userID's tasks. Another user's task is NotFound.
func (s *TodoService) Get(ctx context.Context, userID, id string) (*model.TodoTask, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "task ID is required")
	}
	task, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("service/todo: getting task %s: %w", id, err)
	}
	return task, nil
}

// List returns userID's tasks, oldest first.
func (s *TodoService) List(ctx context.Context, userID string) ([]model.TodoTask, error) {
	tasks, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/todo: listing tasks: %w", err)
	}
	return tasks, nil
}

// Rename changes a task's name; the same rules as Create apply.
func (s *TodoService) Rename(ctx context.Context, userID, id, name string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "task ID is required")
	}
	name, err := validateTaskName(name)
	if err != nil {
		return err
	}

	task := &model.TodoTask{ID: id, UserID: userID, Name: name}
	if err := s.repo.Update(ctx, task); err != nil {
		return fmt.Errorf("service/todo: updating task %s: %w", id, err)
	}
	return nil
}

// Delete removes one of userID's tasks (completing a task deletes it).
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "task ID is required")
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service/todo: deleting task %s: %w", id, err)
	}

	s.logger.Info("todo task deleted",
		slog.String("userID", userID),
		slog.String("taskID", id),
	)
	return nil
}

func validateTaskName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperror.ValidationFailed("taskInput", ErrNoTaskName)
	}
	if utf8.RuneCountInString(name) > MaxTaskNameLength {
		return "", apperror.ValidationFailed("taskInput",
			fmt.Sprintf("task name must be %d characters or less", MaxTaskNameLength))
	}
	return name, nil
}
