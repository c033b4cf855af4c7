package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/service"
)

const projectsPath = "/myProjects"

type projectListView struct {
	page
	Projects []model.Project
}

type projectEditView struct {
	page
	Project *model.Project
}

type ProjectHandler struct {
	projects *service.ProjectService
	render   *Renderer
	logger   *slog.Logger
}

func NewProjectHandler(projects *service.ProjectService, render *Renderer, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, render: render, logger: logger}
}

func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	projects, err := h.projects.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render.Render(w, http.StatusOK, pageProjects, projectListView{page: page{User: user}, Projects: projects})
}

func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req projectRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	_, err := h.projects.Create(r.Context(), user.ID, service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TechStack:   req.TechStack,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	seeOther(w, r, projectsPath)
}

// HandleEditScreen is POST /updateProjectScreen. Another user's project ID
// is a 404, exactly like an unknown one.
func (h *ProjectHandler) HandleEditScreen(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req projectScreenRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	project, err := h.projects.Get(r.Context(), user.ID, req.ProjectID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render.Render(w, http.StatusOK, pageUpdateProject, projectEditView{page: page{User: user}, Project: project})
}

func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	err := h.projects.Update(r.Context(), user.ID, req.ProjectID, service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TechStack:   req.TechStack,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	seeOther(w, r, projectsPath)
}

// HandleDelete is POST /deleteProject ("complete" in the UI).
func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req deleteProjectRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.projects.Delete(r.Context(), user.ID, req.ProjectID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	seeOther(w, r, projectsPath)
}
