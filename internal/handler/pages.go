package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/student-portal/internal/auth"
)

// PageHandler serves the pages that only need the logged-in user, if any.
type PageHandler struct {
	render *Renderer
}

func NewPageHandler(render *Renderer) *PageHandler {
	return &PageHandler{render: render}
}

func (h *PageHandler) static(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := auth.UserFromContext(r.Context())
		h.render.Render(w, http.StatusOK, name, page{User: user})
	}
}

func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.static(pageHome)(w, r)
}

func (h *PageHandler) HandlePractice(w http.ResponseWriter, r *http.Request) {
	h.static(pagePractice)(w, r)
}

func (h *PageHandler) HandleCommunity(w http.ResponseWriter, r *http.Request) {
	h.static(pageCommunity)(w, r)
}

func (h *PageHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "This is the calendar page")
}

// Pinger is satisfied by *sqlite.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers GET /healthz for load balancers and orchestrators.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeText(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeText(w, http.StatusOK, "ok")
}
