package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clixo/backend/internal/chain"
	"github.com/clixo/backend/internal/models"
)

// GasFeeCredits is the fixed per-payout gas deduction.
const GasFeeCredits int64 = 2

// PayoutWorkerStore is the minimal worker repository interface for
// payouts.
type PayoutWorkerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Worker, error)
	LockPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (int64, error)
	Unlock(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	RestoreLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// PayoutStore persists payout rows.
type PayoutStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, p *models.Payout) error
	MarkSuccess(ctx context.Context, tx pgx.Tx, id uuid.UUID, txHash string) error
	MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*models.Payout, error)
}

// PayoutPreview is the pure read model over a worker's balances.
type PayoutPreview struct {
	WorkerID        uuid.UUID `json:"worker_id"`
	WalletAddress   *string   `json:"wallet_address,omitempty"`
	PendingAmount   int64     `json:"pending_amount"`
	LockedAmount    int64     `json:"locked_amount"`
	EligibleAmount  int64     `json:"eligible_amount"`
	EstimatedGasFee int64     `json:"estimated_gas_fee"`
	NetReceivable   int64     `json:"net_receivable"`
	CanWithdraw     bool      `json:"can_withdraw"`
	Warnings        []string  `json:"warnings"`
}

// PayoutResult reports a completed payout.
type PayoutResult struct {
	PayoutID    uuid.UUID           `json:"payout_id"`
	Status      models.PayoutStatus `json:"status"`
	GrossAmount int64               `json:"gross_amount"`
	GasFee      int64               `json:"gas_fee"`
	NetAmount   int64               `json:"net_amount"`
	TxHash      string              `json:"tx_hash"`
}

// PayoutService locks a worker's withdrawable balance, transfers the net
// amount on chain, and finalizes or rolls the lock back.
type PayoutService struct {
	db              TxBeginner
	workers         PayoutWorkerStore
	payouts         PayoutStore
	gateway         chain.Gateway
	gasFee          int64
	transferTimeout time.Duration
	log             *slog.Logger
}

func NewPayoutService(db TxBeginner, workers PayoutWorkerStore, payouts PayoutStore, gateway chain.Gateway, transferTimeout time.Duration, log *slog.Logger) *PayoutService {
	if log == nil {
		log = slog.Default()
	}
	return &PayoutService{
		db:              db,
		workers:         workers,
		payouts:         payouts,
		gateway:         gateway,
		gasFee:          GasFeeCredits,
		transferTimeout: transferTimeout,
		log:             log,
	}
}

// Preview computes what a payout would look like right now. Never
// mutates.
func (s *PayoutService) Preview(ctx context.Context, workerID uuid.UUID) (*PayoutPreview, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}

	warnings := []string{}
	if worker.WalletAddress == nil {
		warnings = append(warnings, "Wallet not linked")
	}
	if worker.PendingAmount <= 0 {
		warnings = append(warnings, "No funds available")
	}

	eligible := worker.PendingAmount
	net := eligible - s.gasFee
	if net < 0 {
		net = 0
	}
	if eligible > 0 && eligible <= s.gasFee {
		warnings = append(warnings, "Balance too low to cover gas fees")
	}

	return &PayoutPreview{
		WorkerID:        workerID,
		WalletAddress:   worker.WalletAddress,
		PendingAmount:   worker.PendingAmount,
		LockedAmount:    worker.LockedAmount,
		EligibleAmount:  eligible,
		EstimatedGasFee: s.gasFee,
		NetReceivable:   net,
		CanWithdraw:     len(warnings) == 0 && net > 0,
		Warnings:        warnings,
	}, nil
}

// Execute drains the worker's pending balance through an on-chain
// transfer. The lock step is a conditional update on locked_amount = 0,
// so concurrent calls for the same worker serialize at the store. The
// lock is held across the external transfer (bounded by
// transferTimeout); a crash in that window is recovered by the
// reconciliation sweep.
func (s *PayoutService) Execute(ctx context.Context, workerID uuid.UUID) (*PayoutResult, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkerNotFound
		}
		return nil, err
	}
	if worker.WalletAddress == nil {
		return nil, ErrWalletNotLinked
	}
	if worker.PendingAmount <= 0 {
		return nil, ErrNoPendingFunds
	}
	if worker.LockedAmount > 0 {
		return nil, ErrPayoutInProgress
	}
	// Explicit negative-net guard: the fixed gas fee must not exceed
	// the gross amount. Re-checked inside the lock transaction.
	if worker.PendingAmount <= s.gasFee {
		return nil, ErrBelowGasFee
	}

	payout, err := s.lockAndRecord(ctx, workerID)
	if err != nil {
		return nil, err
	}

	transferCtx, cancel := context.WithTimeout(ctx, s.transferTimeout)
	defer cancel()

	txHash, err := s.gateway.SendTransaction(transferCtx, *worker.WalletAddress, chain.WeiFromCredits(payout.NetAmount))
	if err != nil {
		s.rollback(workerID, payout.ID, err)
		return nil, fmt.Errorf("payout transfer: %w", err)
	}

	if err := s.finalize(ctx, workerID, payout.ID, txHash); err != nil {
		// The transfer went through; restoring pending here would pay
		// the worker twice. Leave the lock for operational
		// reconciliation and make the state loud.
		s.log.Error("payout stuck: transfer sent but finalize failed",
			"worker_id", workerID, "payout_id", payout.ID, "tx_hash", txHash, "error", err)
		return nil, fmt.Errorf("finalize payout: %w", err)
	}

	s.log.Info("payout completed",
		"worker_id", workerID, "payout_id", payout.ID,
		"gross", payout.GrossAmount, "net", payout.NetAmount, "tx_hash", txHash)

	return &PayoutResult{
		PayoutID:    payout.ID,
		Status:      models.PayoutStatusSuccess,
		GrossAmount: payout.GrossAmount,
		GasFee:      payout.GasFee,
		NetAmount:   payout.NetAmount,
		TxHash:      txHash,
	}, nil
}

// ListPayouts returns the worker's payout history, newest first.
func (s *PayoutService) ListPayouts(ctx context.Context, workerID uuid.UUID) ([]*models.Payout, error) {
	return s.payouts.ListByWorker(ctx, workerID)
}

// lockAndRecord atomically moves pending into locked and creates the
// PENDING payout row. If the locked amount does not cover the gas fee
// the transaction rolls back, releasing the lock untouched.
func (s *PayoutService) lockAndRecord(ctx context.Context, workerID uuid.UUID) (*models.Payout, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	amount, err := s.workers.LockPending(ctx, tx, workerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPayoutInProgress
		}
		return nil, err
	}
	if amount <= s.gasFee {
		return nil, ErrBelowGasFee
	}

	payout := &models.Payout{
		ID:          uuid.New(),
		WorkerID:    workerID,
		GrossAmount: amount,
		GasFee:      s.gasFee,
		NetAmount:   amount - s.gasFee,
		Status:      models.PayoutStatusPending,
	}
	if err := s.payouts.CreateTx(ctx, tx, payout); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return payout, nil
}

func (s *PayoutService) finalize(ctx context.Context, workerID, payoutID uuid.UUID, txHash string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.workers.Unlock(ctx, tx, workerID); err != nil {
		return err
	}
	if err := s.payouts.MarkSuccess(ctx, tx, payoutID, txHash); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// rollback restores the worker's pending balance and marks the payout
// FAILED after a transfer failure. The rollback runs on a fresh context:
// the failure may be the request context expiring, and the compensation
// must still go through. If even the rollback fails the lock stays in
// place for the reconciliation sweep, logged loudly.
func (s *PayoutService) rollback(workerID, payoutID uuid.UUID, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.log.Error("payout rollback failed: funds remain locked",
			"worker_id", workerID, "payout_id", payoutID, "cause", cause, "error", err)
		return
	}
	defer tx.Rollback(ctx)

	if err := s.workers.RestoreLocked(ctx, tx, workerID); err != nil {
		s.log.Error("payout rollback failed: funds remain locked",
			"worker_id", workerID, "payout_id", payoutID, "cause", cause, "error", err)
		return
	}
	if err := s.payouts.MarkFailed(ctx, tx, payoutID); err != nil {
		s.log.Error("payout rollback failed: funds remain locked",
			"worker_id", workerID, "payout_id", payoutID, "cause", cause, "error", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		s.log.Error("payout rollback failed: funds remain locked",
			"worker_id", workerID, "payout_id", payoutID, "cause", cause, "error", err)
		return
	}
	s.log.Warn("payout rolled back", "worker_id", workerID, "payout_id", payoutID, "cause", cause)
}
