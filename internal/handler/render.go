// Package handler contains the portal's HTTP handlers.
//
// HANDLER RESPONSIBILITIES:
//  1. Decode the form into a request struct and validate it
//  2. Call the service with the logged-in user's ID
//  3. Render a page, redirect, or hand the error to writeError
//
// Handlers hold no business rules and never touch SQL.
package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/model"
)

// Page template names, as files under web/templates.
const (
	pageHome          = "home.html"
	pageLogin         = "login_screen.html"
	pageLearning      = "my_learning.html"
	pageProgress      = "my_progress.html"
	pageProjects      = "my_projects.html"
	pageUpdateProject = "update_project.html"
	pageTodoList      = "my_todo_list.html"
	pageUpdateTask    = "update_todo_task.html"
	pagePractice      = "practice.html"
	pageCommunity     = "community.html"
	pageProfile       = "profile.html"
	pageUpdateProfile = "update_profile.html"
)

var pages = []string{
	pageHome, pageLogin, pageLearning, pageProgress, pageProjects, pageUpdateProject,
	pageTodoList, pageUpdateTask, pagePractice, pageCommunity, pageProfile, pageUpdateProfile,
}

// page is embedded in every view so layout.html can always read .User.
type page struct {
	User *model.User
}

// Renderer holds one parsed template set per page.
//
// TEMPLATE COMPOSITION:
// Each set is layout.html plus one page file. The layout calls
// {{template "content" .}} and the page defines "content" (and optionally
// "title"). Pages are parsed separately because they all define the same
// block names.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses every page from fsys once at startup. fsys must hold a
// templates/ directory (web.Templates does).
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), logger: logger}

	for _, name := range pages {
		tmpl, err := template.New("layout.html").ParseFS(fsys, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Render executes the page into a buffer first, so a template error yields a
// clean 500 instead of half a page.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := r.pages[name]
	if !ok {
		r.logger.Error("unknown template", slog.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		r.logger.Error("rendering template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("writing response", slog.String("error", err.Error()))
	}
}
