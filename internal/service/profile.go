package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// ProfileService reads, edits and deletes the logged-in user's own record.
type ProfileService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewProfileService(users repository.UserRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, logger: logger}
}

// Get returns the full user record. Fields never filled in are "".
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/profile: getting user %s: %w", userID, err)
	}
	return user, nil
}

// Update overwrites all ten profile fields. The profile picture stays as
// Google supplied it.
func (s *ProfileService) Update(ctx context.Context, userID string, p model.Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)

	if err := s.users.UpdateProfile(ctx, userID, p); err != nil {
		return fmt.Errorf("service/profile: updating user %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return nil
}

// Delete removes the account together with its selections, tasks and projects.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("service/profile: deleting user %s: %w", userID, err)
	}

	s.logger.Info("user deleted", slog.String("userID", userID))
	return nil
}
