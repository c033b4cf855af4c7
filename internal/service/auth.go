package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository"
)

// UnverifiedEmailMessage is shown when Google will not vouch for the address.
const UnverifiedEmailMessage = "User email not available or not verified by Google."

// AuthService turns a Google identity into a portal user and a session token.
//
//	AuthHandler → GoogleProvider.Exchange → AuthService.CompleteLogin → UserRepository
//	                                                             ↘ TokenService
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// AuthResult bundles the user and the session token so the handler can set
// the cookie and redirect in one step.
type AuthResult struct {
	User    *model.User
	Token   string
	Created bool
}

// CompleteLogin finishes the OAuth callback once the provider has answered.
//
//  1. Refuse identities whose email Google has not verified (no user row, no token)
//  2. Create the user on first login; a returning user's record is left as is,
//     so profile edits are never overwritten by Google's copy
//  3. Issue a session token for the user ID
func (s *AuthService) CompleteLogin(ctx context.Context, gu *auth.GoogleUser) (*AuthResult, error) {
	if gu == nil || gu.Subject == "" {
		return nil, fmt.Errorf("service/auth: provider returned no identity")
	}
	if !gu.EmailVerified || gu.Email == "" {
		s.logger.Warn("login refused: email not verified", slog.String("sub", gu.Subject))
		return nil, apperror.Unverified(UnverifiedEmailMessage)
	}

	created := false
	user, err := s.users.GetByID(ctx, gu.Subject)
	switch {
	case err == nil:
	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			ID:         gu.Subject,
			Name:       gu.DisplayName(),
			Email:      gu.Email,
			ProfilePic: gu.Picture,
		}
		if err := s.users.Create(ctx, user); err != nil {
			// A concurrent first login for the same account won the insert.
			if !errors.Is(err, apperror.ErrConflict) {
				return nil, fmt.Errorf("service/auth: creating user %s: %w", gu.Subject, err)
			}
		} else {
			created = true
			s.logger.Info("user created", slog.String("userID", user.ID))
		}
	default:
		return nil, fmt.Errorf("service/auth: looking up user %s: %w", gu.Subject, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via Google", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token, Created: created}, nil
}
