package handlers

import (
	"net/http"

	"collab-match-backend/internal/middleware"
	"collab-match-backend/internal/models"
	"collab-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// TaskHandler handles edits to individual tasks
type TaskHandler struct {
	taskService  *services.TaskService
	matchService *services.MatchService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, matchService *services.MatchService) *TaskHandler {
	return &TaskHandler{
		taskService:  taskService,
		matchService: matchService,
	}
}

// authorize loads the task and checks the caller takes part in its match
func (h *TaskHandler) authorize(w http.ResponseWriter, r *http.Request, taskID string) (*models.Task, bool) {
	ctx := r.Context()

	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get task")
		return nil, false
	}
	if _, err := h.matchService.GetMatch(ctx, task.MatchID, middleware.GetUserID(ctx)); err != nil {
		respondServiceError(w, r, err, "Failed to get task")
		return nil, false
	}
	return task, true
}

// UpdateTask handles PATCH /api/v1/tasks/{task_id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	var patch services.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if _, ok := h.authorize(w, r, taskID); !ok {
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, patch)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/v1/tasks/{task_id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	if _, ok := h.authorize(w, r, taskID); !ok {
		return
	}

	deleted, err := h.taskService.DeleteTask(r.Context(), taskID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to delete task")
		return
	}
	if !deleted {
		respondError(w, "task not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
