package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/handler"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/service"
)

func newProfileHandler(env *testEnv) *handler.ProfileHandler {
	return handler.NewProfileHandler(service.NewProfileService(env.db.Users(), env.logger), env.cookies, env.render, env.logger)
}

func TestProfileHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "Alice")
	h := newProfileHandler(env)

	rec := serve(h.HandleEditForm, asUser(httptest.NewRequest(http.MethodGet, "/userUpdate", nil), alice))
	require.Equal(t, http.StatusOK, rec.Code)

	form := url.Values{
		"name":              {"Alice Smith"},
		"email":             {"alice.smith@example.edu"},
		"major":             {"Computer Science"},
		"year":              {"Junior"},
		"gpa":               {"3.8"},
		"advisor":           {"Dr. Hopper"},
		"Enrollment_Status": {"Full-time"},
		"level":             {"Undergraduate"},
		"program":           {"BSc"},
		"college":           {"Engineering"},
	}
	rec = serve(h.HandleUpdate, asUser(formRequest(http.MethodPost, "/userUpdate", form), alice))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/myProfile", rec.Header().Get("Location"))

	got, err := env.db.Users().GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Profile{
		Name:             "Alice Smith",
		Email:            "alice.smith@example.edu",
		Major:            "Computer Science",
		Year:             "Junior",
		GPA:              "3.8",
		Advisor:          "Dr. Hopper",
		EnrollmentStatus: "Full-time",
		Level:            "Undergraduate",
		Program:          "BSc",
		College:          "Engineering",
	}, model.Profile{
		Name:             got.Name,
		Email:            got.Email,
		Major:            got.Major,
		Year:             got.Year,
		GPA:              got.GPA,
		Advisor:          got.Advisor,
		EnrollmentStatus: got.EnrollmentStatus,
		Level:            got.Level,
		Program:          got.Program,
		College:          got.College,
	})

	// The context still holds the stale user; the view must read storage.
	rec = serve(h.HandleView, asUser(httptest.NewRequest(http.MethodGet, "/myProfile", nil), alice))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Computer Science")
	assert.Contains(t, rec.Body.String(), "Full-time")
}

func TestProfileHandler_UpdateRejectsBadEmail(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "Alice")
	h := newProfileHandler(env)

	rec := serve(h.HandleUpdate, asUser(formRequest(http.MethodPost, "/userUpdate",
		url.Values{"name": {"Alice"}, "email": {"nope"}}), alice))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email must be a valid email address", rec.Body.String())
}

func TestProfileHandler_UpdateAcceptsPaddedEmail(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "Alice")
	h := newProfileHandler(env)

	rec := serve(h.HandleUpdate, asUser(formRequest(http.MethodPost, "/userUpdate",
		url.Values{"name": {"Alice"}, "email": {" alice@example.edu "}}), alice))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	got, err := env.db.Users().GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.edu", got.Email)
}

func TestProfileHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "Alice")
	h := newProfileHandler(env)
	ctx := context.Background()

	require.NoError(t, env.db.Todos().Create(ctx, &model.TodoTask{ID: "t1", UserID: alice.ID, Name: "task"}))

	rec := serve(h.HandleDelete, asUser(httptest.NewRequest(http.MethodGet, "/userDelete", nil), alice))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, auth.LoginPath, rec.Header().Get("Location"))
	session := findCookie(rec, auth.SessionCookie)
	require.NotNil(t, session)
	assert.Negative(t, session.MaxAge)

	_, err := env.db.Users().GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	tasks, err := env.db.Todos().List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
