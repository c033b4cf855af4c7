package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// Table-driven: each case checks that errors.Is() sees the right sentinel
// through an AppError, including when the AppError is itself wrapped.
func TestErrorsIs(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("project", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("taskInput", "No task name provided"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "sub-1"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unverified wraps ErrUnverified",
			err:       Unverified("email not verified"),
			target:    ErrUnverified,
			wantMatch: true,
		},
		{
			name:      "Upstream wraps ErrUpstream",
			err:       Upstream("token exchange failed", cause),
			target:    ErrUpstream,
			wantMatch: true,
		},
		{
			name:      "Upstream also matches its cause",
			err:       Upstream("token exchange failed", cause),
			target:    cause,
			wantMatch: true,
		},
		{
			name:      "fmt.Errorf wrapping keeps the sentinel visible",
			err:       fmt.Errorf("service: %w", NotFound("todo task", "t1")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("project", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unverified does NOT match ErrUpstream",
			err:       Unverified("email not verified"),
			target:    ErrUpstream,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("project", "abc123"),
			wantMessage: "project not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("taskInput", "No task name provided"),
			wantMessage: "No task name provided",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("user", "sub-1"),
			wantMessage: "user conflict with id sub-1",
		},
		{
			name:        "Upstream message appends the cause",
			err:         Upstream("fetching userinfo", errors.New("status 503")),
			wantMessage: "fetching userinfo: status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ValidationFailed("projectTitle", "project title is required"))

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As() did not find the AppError")
	}
	if appErr.Field != "projectTitle" {
		t.Errorf("Field = %q, want %q", appErr.Field, "projectTitle")
	}
}
