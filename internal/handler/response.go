package handler

// RESPONSE HELPERS:
// The portal answers browsers, not API clients, so errors are short plain
// text bodies and successful form posts redirect with 303 See Other.
//
// ERROR MAPPING:
//   ErrValidation  → 400, the AppError message ("No task name provided")
//   ErrUnverified  → 400, the AppError message
//   ErrNotFound    → 404
//   ErrConflict    → 409
//   ErrUpstream    → 502, a fixed message; the cause only goes to the log
//   anything else  → 500, a fixed message; details only go to the log

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/apperror"
)

const (
	msgUpstream = "authentication provider unavailable"
	msgInternal = "Internal Server Error"
)

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(body)) //nolint:errcheck // client went away
}

// writeError maps a domain error to a status code and a safe message.
//
// errors.Is walks the whole chain, so a service error like
// fmt.Errorf("service/todo: ...: %w", apperror.NotFound(...)) still maps to 404.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	hasAppErr := errors.As(err, &appErr)

	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrUnverified):
		msg := http.StatusText(http.StatusBadRequest)
		if hasAppErr {
			msg = appErr.Message
		}
		writeText(w, http.StatusBadRequest, msg)

	case errors.Is(err, apperror.ErrNotFound):
		writeText(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))

	case errors.Is(err, apperror.ErrConflict):
		writeText(w, http.StatusConflict, http.StatusText(http.StatusConflict))

	case errors.Is(err, apperror.ErrUpstream):
		logger.Error("identity provider call failed", slog.String("error", err.Error()))
		writeText(w, http.StatusBadGateway, msgUpstream)

	default:
		// Never expose SQL, file paths or wrapped internals to the browser.
		logger.Error("request failed", slog.String("error", err.Error()))
		writeText(w, http.StatusInternalServerError, msgInternal)
	}
}

// seeOther redirects after a form post, so a browser refresh does not resubmit it.
func seeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
