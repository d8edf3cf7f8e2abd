package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clixo/backend/internal/models"
)

// TaskStoreForHandler is the subset of the task repository the handler
// needs.
type TaskStoreForHandler interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

// OptionCreator adds vote options when a task is created.
type OptionCreator interface {
	CreateOption(ctx context.Context, o *models.Option) error
	ListOptionsByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Option, error)
}

// TaskHandler serves task creation and lookup.
type TaskHandler struct {
	Tasks   TaskStoreForHandler
	Options OptionCreator
	Logger  *slog.Logger
}

type createTaskRequest struct {
	UserID  string   `json:"user_id"`
	Title   string   `json:"title"`
	Budget  int64    `json:"budget"`
	Options []string `json:"options"`
}

type taskResponse struct {
	Task    *models.Task     `json:"task"`
	Options []*models.Option `json:"options,omitempty"`
}

// CreateTask handles POST /api/v1/tasks. New tasks start DRAFT with
// zero funding.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
		return
	}
	if req.Budget <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "budget must be > 0"})
		return
	}
	if len(req.Options) < 2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least two options required"})
		return
	}

	task := &models.Task{
		ID:     uuid.New(),
		UserID: userID,
		Title:  req.Title,
		Budget: req.Budget,
		Status: models.TaskStatusDraft,
	}
	if err := h.Tasks.Create(r.Context(), task); err != nil {
		h.Logger.Error("create task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
		return
	}

	options := make([]*models.Option, 0, len(req.Options))
	for _, label := range req.Options {
		opt := &models.Option{ID: uuid.New(), TaskID: task.ID, Label: label}
		if err := h.Options.CreateOption(r.Context(), opt); err != nil {
			h.Logger.Error("create option", "task_id", task.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create options"})
			return
		}
		options = append(options, opt)
	}

	writeJSON(w, http.StatusCreated, taskResponse{Task: task, Options: options})
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}
	task, err := h.Tasks.GetByID(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
			return
		}
		h.Logger.Error("get task", "task_id", taskID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	options, err := h.Options.ListOptionsByTask(r.Context(), taskID)
	if err != nil {
		h.Logger.Error("list options", "task_id", taskID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, taskResponse{Task: task, Options: options})
}
