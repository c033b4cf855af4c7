package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/service"
)

const profilePath = "/myProfile"

type ProfileHandler struct {
	profiles *service.ProfileService
	cookies  Cookies
	render   *Renderer
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, cookies Cookies, render *Renderer, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, cookies: cookies, render: render, logger: logger}
}

// HandleView is GET /myProfile. The record is re-read from storage rather
// than taken from the context so an edit shows up immediately.
func (h *ProfileHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	h.renderUser(w, r, pageProfile)
}

// HandleEditForm is GET /userUpdate.
func (h *ProfileHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	h.renderUser(w, r, pageUpdateProfile)
}

// HandleUpdate is POST /userUpdate. All ten fields are overwritten with
// what the form sent; a field left out of the form becomes "".
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	err := h.profiles.Update(r.Context(), current.ID, model.Profile{
		Name:             req.Name,
		Email:            req.Email,
		Major:            req.Major,
		Year:             req.Year,
		GPA:              req.GPA,
		Advisor:          req.Advisor,
		EnrollmentStatus: req.EnrollmentStatus,
		Level:            req.Level,
		Program:          req.Program,
		College:          req.College,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	seeOther(w, r, profilePath)
}

// HandleDelete is GET /userDelete: remove the account and everything it
// owns, then log out.
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.profiles.Delete(r.Context(), current.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.cookies.clearSession(w)
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}

func (h *ProfileHandler) renderUser(w http.ResponseWriter, r *http.Request, name string) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.profiles.Get(r.Context(), current.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render.Render(w, http.StatusOK, name, page{User: user})
}
