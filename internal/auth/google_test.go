package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/student-portal/internal/apperror"
)

const (
	testClientID     = "portal-client"
	testClientSecret = "portal-secret"
	testRedirect     = "http://portal.test/login/callback"
)

// fakeGoogle is an httptest server that speaks just enough OpenID Connect
// for GoogleProvider: discovery, token and userinfo.
type fakeGoogle struct {
	srv *httptest.Server

	discoveryHits atomic.Int32
	userinfo      map[string]any
	userinfoCode  int
	failDiscovery bool
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{
		userinfo: map[string]any{
			"sub":            "1234567890",
			"email":          "ada@example.edu",
			"email_verified": true,
			"given_name":     "Ada",
			"name":           "Ada Lovelace",
			"picture":        "https://example.edu/ada.png",
		},
		userinfoCode: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		f.discoveryHits.Add(1)
		if f.failDiscovery {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		writeTestJSON(w, map[string]string{
			"authorization_endpoint": f.srv.URL + "/o/oauth2/auth",
			"token_endpoint":         f.srv.URL + "/token",
			"userinfo_endpoint":      f.srv.URL + "/userinfo",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != testClientID || secret != testClientSecret {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("redirect_uri") != testRedirect {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		writeTestJSON(w, map[string]any{
			"access_token": "access-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if f.userinfoCode != http.StatusOK {
			http.Error(w, "boom", f.userinfoCode)
			return
		}
		writeTestJSON(w, f.userinfo)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGoogle) provider(ttl time.Duration) *GoogleProvider {
	return NewGoogleProvider(GoogleConfig{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		DiscoveryURL: f.srv.URL + "/.well-known/openid-configuration",
		DiscoveryTTL: ttl,
		HTTPClient:   &http.Client{Timeout: 2 * time.Second},
	})
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestAuthURL(t *testing.T) {
	f := newFakeGoogle(t)
	p := f.provider(time.Hour)

	raw, err := p.AuthURL(context.Background(), "state-abc", testRedirect)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, f.srv.URL+"/o/oauth2/auth"))

	q := u.Query()
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, testRedirect, q.Get("redirect_uri"))
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}

func TestExchange_Success(t *testing.T) {
	f := newFakeGoogle(t)
	p := f.provider(time.Hour)

	user, err := p.Exchange(context.Background(), "good-code", testRedirect)
	require.NoError(t, err)

	assert.Equal(t, "1234567890", user.Subject)
	assert.Equal(t, "ada@example.edu", user.Email)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, "Ada", user.DisplayName())
	assert.Equal(t, "https://example.edu/ada.png", user.Picture)
}

func TestExchange_UnverifiedIsReturnedNotRejected(t *testing.T) {
	f := newFakeGoogle(t)
	f.userinfo["email_verified"] = false
	p := f.provider(time.Hour)

	user, err := p.Exchange(context.Background(), "good-code", testRedirect)
	require.NoError(t, err)
	assert.False(t, user.EmailVerified)
}

func TestExchange_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fakeGoogle)
		code     string
		redirect string
	}{
		{name: "bad code", code: "wrong-code", redirect: testRedirect},
		{name: "redirect mismatch", code: "good-code", redirect: "http://elsewhere/cb"},
		{
			name:     "userinfo error status",
			setup:    func(f *fakeGoogle) { f.userinfoCode = http.StatusInternalServerError },
			code:     "good-code",
			redirect: testRedirect,
		},
		{
			name:     "missing subject",
			setup:    func(f *fakeGoogle) { delete(f.userinfo, "sub") },
			code:     "good-code",
			redirect: testRedirect,
		},
		{
			name:     "discovery down",
			setup:    func(f *fakeGoogle) { f.failDiscovery = true },
			code:     "good-code",
			redirect: testRedirect,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeGoogle(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			p := f.provider(time.Hour)

			_, err := p.Exchange(context.Background(), tt.code, tt.redirect)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrUpstream), "want ErrUpstream, got %v", err)
		})
	}
}

func TestDiscovery_CachedForTTL(t *testing.T) {
	f := newFakeGoogle(t)
	p := f.provider(time.Hour)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := p.AuthURL(context.Background(), "s", testRedirect)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.discoveryHits.Load(), "discovery fetched once within TTL")

	now = now.Add(2 * time.Hour)
	_, err := p.AuthURL(context.Background(), "s", testRedirect)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.discoveryHits.Load(), "discovery refetched after TTL")
}

func TestDiscovery_ZeroTTLAlwaysFetches(t *testing.T) {
	f := newFakeGoogle(t)
	p := f.provider(0)

	for i := 0; i < 2; i++ {
		_, err := p.AuthURL(context.Background(), "s", testRedirect)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), f.discoveryHits.Load())
}

func TestDisplayName_FallsBackToName(t *testing.T) {
	u := &GoogleUser{Name: "Grace Hopper"}
	assert.Equal(t, "Grace Hopper", u.DisplayName())
}
