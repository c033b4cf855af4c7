package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/student-portal/internal/apperror"
)

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation message is shown",
			err:        apperror.ValidationFailed("taskInput", "No task name provided"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "No task name provided",
		},
		{
			name:       "unverified message is shown",
			err:        apperror.Unverified("User email not available or not verified by Google."),
			wantStatus: http.StatusBadRequest,
			wantBody:   "User email not available or not verified by Google.",
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("service/todo: getting task: %w", apperror.NotFound("todo task", "abc")),
			wantStatus: http.StatusNotFound,
			wantBody:   "Not Found",
		},
		{
			name:       "conflict",
			err:        apperror.Conflict("user", "sub-1"),
			wantStatus: http.StatusConflict,
			wantBody:   "Conflict",
		},
		{
			name:       "upstream hides the cause",
			err:        apperror.Upstream("token exchange failed", errors.New("dial tcp: refused")),
			wantStatus: http.StatusBadGateway,
			wantBody:   msgUpstream,
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("sqlite: disk I/O error at /var/lib/portal.db"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   msgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, logger, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestSeeOther(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/myTodoList", nil)

	seeOther(rec, req, "/myTodoList")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/myTodoList", rec.Header().Get("Location"))
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDecodeForm_RepeatedCheckboxes(t *testing.T) {
	req := postForm(url.Values{"moduleItemCheckboxInput": {"3", "7", "9"}, "unknown": {"x"}})

	var got checklistRequest
	require.NoError(t, decodeForm(req, &got))
	assert.Equal(t, []string{"3", "7", "9"}, got.ItemIDs)
}

func TestDecodeForm_QueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/saveChecklist?moduleItemCheckboxInput=4", nil)

	var got checklistRequest
	require.NoError(t, decodeForm(req, &got))
	assert.Equal(t, []string{"4"}, got.ItemIDs)
}

func TestDecodeForm_ValidationMessages(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		dst     any
		wantMsg string
	}{
		{
			name:    "missing project title",
			values:  url.Values{"projectDescription": {"d"}},
			dst:     &projectRequest{},
			wantMsg: "projectTitle is required",
		},
		{
			name:    "missing task selection",
			values:  url.Values{},
			dst:     &deleteTaskRequest{},
			wantMsg: "deleteTaskSelection is required",
		},
		{
			name:    "bad email",
			values:  url.Values{"email": {"not-an-email"}},
			dst:     &profileRequest{},
			wantMsg: "email must be a valid email address",
		},
		{
			name:    "title too long",
			values:  url.Values{"projectTitle": {strings.Repeat("x", 201)}},
			dst:     &projectRequest{},
			wantMsg: "projectTitle must be at most 200 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeForm(postForm(tt.values), tt.dst)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestDecodeForm_EmptyProfileIsValid(t *testing.T) {
	var got profileRequest
	require.NoError(t, decodeForm(postForm(url.Values{"Enrollment_Status": {"Full-time"}}), &got))
	assert.Equal(t, "Full-time", got.EnrollmentStatus)
	assert.Empty(t, got.Email)
}

func TestDecodeForm_TrimsProfileEmailBeforeValidating(t *testing.T) {
	var got profileRequest
	require.NoError(t, decodeForm(postForm(url.Values{
		"name":  {"  Ada  "},
		"email": {" ada@example.edu "},
	}), &got))
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.edu", got.Email)
}
