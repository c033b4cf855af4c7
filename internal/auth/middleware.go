package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/apperror"
	"github.com/sakif/student-portal/internal/model"
)

// contextKey is unexported so no other package can read or overwrite the
// user stored by LoadUser.
type contextKey string

const userKey contextKey = "user"

// LoginPath is where RequireUser sends anonymous visitors.
const LoginPath = "/userLogin"

// UserLoader is the one storage call LoadUser needs.
// repository.UserRepository satisfies it.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// LoadUser resolves the session cookie into a *model.User for every request.
//
// An absent, expired or forged cookie leaves the request anonymous, as does a
// valid token whose user has since been deleted. A storage failure while
// loading the user answers 500 rather than pretending the visitor is logged
// out. Pair it with RequireUser on the routes that need a login.
func LoadUser(tokens *TokenService, users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				logger.Debug("ignoring invalid session cookie", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if errors.Is(err, apperror.ErrNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				logger.Error("loading session user",
					slog.String("userID", userID),
					slog.String("error", err.Error()),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireUser redirects anonymous requests to LoginPath.
// It must run after LoadUser.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the logged-in user, or (nil, false) for an
// anonymous request.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}
