package router

import (
	"net/http"

	"github.com/clixo/backend/internal/handlers"
	"github.com/clixo/backend/internal/middleware"
)

// New returns an http.Handler serving the ledger API under /api/v1.
// Payout endpoints require the worker bearer token; the rest are keyed
// by path IDs.
func New(
	taskHandler *handlers.TaskHandler,
	fundingHandler *handlers.FundingHandler,
	rewardHandler *handlers.RewardHandler,
	payoutHandler *handlers.PayoutHandler,
	submissionHandler *handlers.SubmissionHandler,
	jwtSecret []byte,
) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.WorkerAuth(jwtSecret)

	mux.HandleFunc("POST /api/v1/tasks", taskHandler.CreateTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}", taskHandler.GetTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/fund", fundingHandler.FundTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/rewards/preview", rewardHandler.PreviewRewards)
	mux.HandleFunc("POST /api/v1/tasks/{id}/rewards/settle", rewardHandler.SettleRewards)

	mux.HandleFunc("POST /api/v1/submissions", submissionHandler.Create)
	mux.HandleFunc("GET /api/v1/tasks/{id}/submissions", submissionHandler.ListByTask)
	mux.HandleFunc("GET /api/v1/workers/{id}/submissions", submissionHandler.ListByWorker)

	mux.Handle("GET /api/v1/me/payout-preview", auth(http.HandlerFunc(payoutHandler.Preview)))
	mux.Handle("POST /api/v1/me/payouts", auth(http.HandlerFunc(payoutHandler.Execute)))
	mux.Handle("GET /api/v1/me/payouts", auth(http.HandlerFunc(payoutHandler.History)))

	return mux
}
