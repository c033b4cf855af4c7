package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/handler"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/repository/sqlite"
	"github.com/sakif/student-portal/web"
)

// testEnv is a real in-memory database with the rendered templates, so
// handler tests go all the way down to SQL.
type testEnv struct {
	db      *sqlite.DB
	render  *handler.Renderer
	tokens  *auth.TokenService
	cookies handler.Cookies
	logger  *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	render, err := handler.NewRenderer(web.Templates, logger)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	return &testEnv{
		db:      db,
		render:  render,
		tokens:  tokens,
		cookies: handler.Cookies{SessionTTL: time.Hour},
		logger:  logger,
	}
}

func (e *testEnv) createUser(t *testing.T, id, name string) *model.User {
	t.Helper()
	user := &model.User{ID: id, Name: name, Email: id + "@example.edu"}
	require.NoError(t, e.db.Users().Create(context.Background(), user))
	return user
}

func asUser(req *http.Request, user *model.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
