package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/clixo/backend/internal/chain"
	"github.com/clixo/backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps service sentinels to HTTP statuses. Anything
// unclassified is logged and surfaced as an opaque 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrWorkerNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})

	case errors.Is(err, services.ErrTxReplayed),
		errors.Is(err, services.ErrAlreadyFunded),
		errors.Is(err, services.ErrTaskNotActive),
		errors.Is(err, services.ErrTaskNotCompleted),
		errors.Is(err, services.ErrDuplicateVote),
		errors.Is(err, services.ErrPayoutInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})

	case errors.Is(err, services.ErrInsufficientFunds):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": err.Error()})

	case errors.Is(err, services.ErrTxHashRequired),
		errors.Is(err, services.ErrInvalidDepositAmount),
		errors.Is(err, services.ErrWrongRecipient),
		errors.Is(err, services.ErrNoSubmissions),
		errors.Is(err, services.ErrOptionNotFound),
		errors.Is(err, services.ErrWalletNotLinked),
		errors.Is(err, services.ErrNoPendingFunds),
		errors.Is(err, services.ErrBelowGasFee),
		errors.Is(err, chain.ErrTxNotFound),
		errors.Is(err, chain.ErrTxFailed):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

	default:
		log.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
