package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/GophTasks/internal/middleware"
	"github.com/atinyakov/GophTasks/internal/models"
	"github.com/atinyakov/GophTasks/internal/repository"
	"github.com/atinyakov/GophTasks/internal/service"
)

// TaskService defines the task operations required by TaskHandler.
type TaskService interface {
	List(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error)
	Get(ctx context.Context, userID, id int64) (models.Task, error)
	Create(ctx context.Context, userID int64, req models.CreateTaskRequest) (models.Task, error)
	UpdateStatus(ctx context.Context, userID, id int64, status models.Status) (models.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

// TaskHandler serves the /tasks endpoints. It must run behind
// middleware.BearerAuth.
type TaskHandler struct {
	TaskService TaskService
}

// List handles GET /tasks?status=&search=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	filter := models.TaskFilter{
		Status: models.Status(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}
	tasks, err := h.TaskService.List(r.Context(), user.ID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tasks)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, id, ok := taskTarget(w, r)
	if !ok {
		return
	}
	task, err := h.TaskService.Get(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, task)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	task, err := h.TaskService.Create(r.Context(), user.ID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, task)
}

// UpdateStatus handles PUT /tasks/{id}/status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, id, ok := taskTarget(w, r)
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request")
		return
	}
	task, err := h.TaskService.UpdateStatus(r.Context(), user.ID, id, req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, id, ok := taskTarget(w, r)
	if !ok {
		return
	}
	if err := h.TaskService.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskTarget(w http.ResponseWriter, r *http.Request) (models.User, int64, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "authorization required")
		return models.User{}, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "invalid task id")
		return models.User{}, 0, false
	}
	return user, id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrInvalidInput):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
