package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/clixo/backend/internal/services"
)

// TaskFunder is the funding operation the handler exposes.
type TaskFunder interface {
	FundTask(ctx context.Context, taskID uuid.UUID, txHash string) (*services.FundingResult, error)
}

// FundingHandler serves POST /api/v1/tasks/{id}/fund.
type FundingHandler struct {
	Funding TaskFunder
	Logger  *slog.Logger
}

type fundTaskRequest struct {
	TxHash string `json:"txHash"`
}

func (h *FundingHandler) FundTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return
	}

	// Body is optional: internal-balance-only funding needs no txHash.
	var req fundTaskRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := h.Funding.FundTask(r.Context(), taskID, req.TxHash)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
