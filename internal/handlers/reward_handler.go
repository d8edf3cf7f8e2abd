package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/clixo/backend/internal/services"
)

// RewardEngine is the settlement surface the handler exposes.
type RewardEngine interface {
	PreviewRewards(ctx context.Context, taskID uuid.UUID) (*services.RewardPreview, error)
	SettleRewards(ctx context.Context, taskID uuid.UUID) (*services.SettlementResult, error)
}

// RewardHandler serves reward preview and settlement.
type RewardHandler struct {
	Settlement RewardEngine
	Logger     *slog.Logger
}

// PreviewRewards handles POST /api/v1/tasks/{id}/rewards/preview.
// Read-only; no balance changes.
func (h *RewardHandler) PreviewRewards(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}
	preview, err := h.Settlement.PreviewRewards(r.Context(), taskID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// SettleRewards handles POST /api/v1/tasks/{id}/rewards/settle.
// Applies rewards to worker balances; succeeds at most once per task.
func (h *RewardHandler) SettleRewards(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}
	result, err := h.Settlement.SettleRewards(r.Context(), taskID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
