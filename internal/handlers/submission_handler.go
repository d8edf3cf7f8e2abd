package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/clixo/backend/internal/models"
)

// SubmissionRecorder is the vote surface the handler exposes.
type SubmissionRecorder interface {
	Create(ctx context.Context, workerID, taskID, optionID uuid.UUID) (*models.Submission, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Submission, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*models.Submission, error)
}

// SubmissionHandler serves worker votes.
type SubmissionHandler struct {
	Submissions SubmissionRecorder
	Logger      *slog.Logger
}

type createSubmissionRequest struct {
	WorkerID string `json:"worker_id"`
	TaskID   string `json:"task_id"`
	OptionID string `json:"option_id"`
}

// Create handles POST /api/v1/submissions.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid worker_id"})
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task_id"})
		return
	}
	optionID, err := uuid.Parse(req.OptionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid option_id"})
		return
	}

	sub, err := h.Submissions.Create(r.Context(), workerID, taskID, optionID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// ListByTask handles GET /api/v1/tasks/{id}/submissions.
func (h *SubmissionHandler) ListByTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}
	subs, err := h.Submissions.ListByTask(r.Context(), taskID)
	if err != nil {
		h.Logger.Error("list submissions by task", "task_id", taskID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if subs == nil {
		subs = []*models.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

// ListByWorker handles GET /api/v1/workers/{id}/submissions.
func (h *SubmissionHandler) ListByWorker(w http.ResponseWriter, r *http.Request) {
	workerID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid worker id"})
		return
	}
	subs, err := h.Submissions.ListByWorker(r.Context(), workerID)
	if err != nil {
		h.Logger.Error("list submissions by worker", "worker_id", workerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if subs == nil {
		subs = []*models.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}
