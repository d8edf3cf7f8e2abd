package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/clixo/backend/internal/middleware"
	"github.com/clixo/backend/internal/models"
	"github.com/clixo/backend/internal/services"
)

// PayoutEngine is the payout surface the handler exposes.
type PayoutEngine interface {
	Preview(ctx context.Context, workerID uuid.UUID) (*services.PayoutPreview, error)
	Execute(ctx context.Context, workerID uuid.UUID) (*services.PayoutResult, error)
	ListPayouts(ctx context.Context, workerID uuid.UUID) ([]*models.Payout, error)
}

// PayoutHandler serves the authenticated worker payout endpoints. The
// worker identity comes from the verified principal, never the request
// body.
type PayoutHandler struct {
	Payouts PayoutEngine
	Logger  *slog.Logger
}

// Preview handles GET /api/v1/me/payout-preview.
func (h *PayoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromCtx(r.Context())
	if principal == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	preview, err := h.Payouts.Preview(r.Context(), principal.WorkerID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Execute handles POST /api/v1/me/payouts.
func (h *PayoutHandler) Execute(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromCtx(r.Context())
	if principal == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	result, err := h.Payouts.Execute(r.Context(), principal.WorkerID)
	if err != nil {
		writeServiceError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// History handles GET /api/v1/me/payouts, newest first.
func (h *PayoutHandler) History(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromCtx(r.Context())
	if principal == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	payouts, err := h.Payouts.ListPayouts(r.Context(), principal.WorkerID)
	if err != nil {
		h.Logger.Error("list payouts", "worker_id", principal.WorkerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch payout history"})
		return
	}
	if payouts == nil {
		payouts = []*models.Payout{}
	}
	writeJSON(w, http.StatusOK, payouts)
}
