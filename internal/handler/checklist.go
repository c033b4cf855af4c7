package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/auth"
	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/service"
)

type dashboardView struct {
	page
	Modules  []model.Module
	Selected map[int64]bool
}

type progressView struct {
	page
	Progress *model.Progress
}

// ChecklistHandler serves the learning dashboard, saves the module checklist
// and shows progress.
type ChecklistHandler struct {
	checklist *service.ChecklistService
	render    *Renderer
	logger    *slog.Logger
}

func NewChecklistHandler(checklist *service.ChecklistService, render *Renderer, logger *slog.Logger) *ChecklistHandler {
	return &ChecklistHandler{checklist: checklist, render: render, logger: logger}
}

// HandleDashboard is GET /userLogin: the module checklist for a logged-in
// user, the login prompt for anyone else.
func (h *ChecklistHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.render.Render(w, http.StatusOK, pageLogin, page{})
		return
	}

	dash, err := h.checklist.Dashboard(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render.Render(w, http.StatusOK, pageLearning, dashboardView{
		page:     page{User: user},
		Modules:  dash.Modules,
		Selected: dash.Selected,
	})
}

// HandleSave replaces the checklist with the checked moduleItemCheckboxInput
// values. Nothing checked clears it.
func (h *ChecklistHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req checklistRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.checklist.SaveChecklist(r.Context(), user.ID, req.ItemIDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	seeOther(w, r, auth.LoginPath)
}

func (h *ChecklistHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	progress, err := h.checklist.Progress(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render.Render(w, http.StatusOK, pageProgress, progressView{
		page:     page{User: user},
		Progress: progress,
	})
}
