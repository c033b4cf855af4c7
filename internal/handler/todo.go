package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/student-portal/internal/model"
	"github.com/sakif/student-portal/internal/service"
)

const todoListPath = "/myTodoList"

type todoListView struct {
	page
	Tasks []model.TodoTask
}

type todoEditView struct {
	page
	Task *model.TodoTask
}

type TodoHandler struct {
	todos  *service.TodoService
	render *Renderer
	logger *slog.Logger
}

func NewTodoHandler(todos *service.TodoService, render *Renderer, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, render: render, logger: logger}
}

// HandleList is GET /myTodoList.
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.todos.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render.Render(w, http.StatusOK, pageTodoList, todoListView{page: page{User: user}, Tasks: tasks})
}

// HandleCreate is POST /myTodoList. A blank taskInput answers 400 with
// "No task name provided" and writes nothing.
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if _, err := h.todos.Create(r.Context(), user.ID, req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}

	seeOther(w, r, todoListPath)
}

// HandleEditScreen is POST /updateTodoListScreen: the edit form for one task.
func (h *TodoHandler) HandleEditScreen(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req taskScreenRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	task, err := h.todos.Get(r.Context(), user.ID, req.TaskID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.render.Render(w, http.StatusOK, pageUpdateTask, todoEditView{page: page{User: user}, Task: task})
}

func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.todos.Rename(r.Context(), user.ID, req.TaskID, req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}

	seeOther(w, r, todoListPath)
}

func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req deleteTaskRequest
	if err := decodeForm(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.todos.Delete(r.Context(), user.ID, req.TaskID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	seeOther(w, r, todoListPath)
}
