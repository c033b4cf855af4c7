package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/metrics"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/service"
)

const stateCookie = "oauth_state"

// LoginProvider is the identity provider as the handlers see it.
// *auth.GoogleProvider implements it; tests substitute a fake.
type LoginProvider interface {
	AuthURL(ctx context.Context, state, redirectURI string) (string, error)
	Exchange(ctx context.Context, code, redirectURI string) (*auth.GoogleUser, error)
}

// Cookies writes the portal's cookies with consistent attributes.
//
// Session and state cookies are HttpOnly (JavaScript cannot read them) and
// SameSite=Lax (sent on the top-level redirect back from Google, not on
// cross-site form posts). Secure should be on whenever the portal is served
// over HTTPS.
type Cookies struct {
	Secure     bool
	SessionTTL time.Duration
}

func (c Cookies) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) setState(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/login",
		MaxAge:   600, // long enough to approve on Google's page
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) clearState(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/login",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AuthHandler runs the Google login flow and logout.
//
//	GET /login           → redirect to Google
//	GET /login/callback  → verify state, exchange code, create user, set session
//	GET /logout          → clear session
type AuthHandler struct {
	provider LoginProvider
	auth     *service.AuthService
	cookies  Cookies
	baseURL  string
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. baseURL may be empty, in which case
// the redirect URI is derived from each request's host.
func NewAuthHandler(
	provider LoginProvider,
	authService *service.AuthService,
	cookies Cookies,
	baseURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		auth:     authService,
		cookies:  cookies,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// HandleLogin redirects the browser to Google's authorization page.
//
// CSRF PROTECTION VIA STATE:
// A random state value goes both into the authorization URL and into a
// short-lived cookie. The callback only proceeds when the two match, which
// proves this browser started the flow here.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	target, err := h.provider.AuthURL(r.Context(), state, h.redirectURI(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.cookies.setState(w, state)
	http.Redirect(w, r, target, http.StatusFound)
}

// HandleCallback completes the login.
//
// HTTP: GET /login/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || q.Get("state") != cookie.Value {
		h.logger.Warn("login callback: state mismatch")
		metrics.RecordLogin("invalid_state")
		writeText(w, http.StatusBadRequest, "invalid OAuth state")
		return
	}
	// single use
	h.cookies.clearState(w)

	if errParam := q.Get("error"); errParam != "" {
		h.logger.Info("login callback: provider returned an error", slog.String("error", errParam))
		metrics.RecordLogin("denied")
		writeText(w, http.StatusBadRequest, "login was not completed: "+errParam)
		return
	}

	code := q.Get("code")
	if code == "" {
		writeText(w, http.StatusBadRequest, "missing OAuth code")
		return
	}

	googleUser, err := h.provider.Exchange(r.Context(), code, h.redirectURI(r))
	if err != nil {
		metrics.RecordLogin("provider_error")
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.CompleteLogin(r.Context(), googleUser)
	if err != nil {
		if errors.Is(err, apperror.ErrUnverified) {
			metrics.RecordLogin("unverified")
		} else {
			metrics.RecordLogin("error")
		}
		writeError(w, h.logger, err)
		return
	}

	if result.Created {
		metrics.RecordLogin("new_user")
	} else {
		metrics.RecordLogin("success")
	}

	h.cookies.setSession(w, result.Token)
	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}

// HandleLogout deletes the session cookie. The token itself stays valid
// until it expires, but the browser no longer has it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clearSession(w)
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}

// redirectURI is what Google sends the browser back to. It must match one
// of the URIs registered for the client exactly.
func (h *AuthHandler) redirectURI(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL + "/login/callback"
	}

	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/login/callback"
}

// currentUser returns the user LoadUser put on the context, or redirects to
// the login page when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
		return nil, false
	}
	return user, true
}
