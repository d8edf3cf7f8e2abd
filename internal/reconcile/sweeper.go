package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clixo/backend/internal/models"
)

// DefaultMaxHold is how long a payout may sit PENDING before the sweep
// treats its lock as stuck. It must comfortably exceed the payout
// transfer timeout.
const DefaultMaxHold = 10 * time.Minute

// TxBeginner abstracts transaction creation.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// StuckPayoutStore finds and resolves stale PENDING payouts.
type StuckPayoutStore interface {
	ListStuckPending(ctx context.Context, cutoff time.Time) ([]*models.Payout, error)
	MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// LockedBalanceStore releases stuck worker locks.
type LockedBalanceStore interface {
	RestoreLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// Sweeper recovers payouts orphaned by a crash between the lock step and
// the terminal status update: it restores the worker's pending balance,
// releases the lock, and marks the payout FAILED. Every recovery is
// logged at error level so stuck locks are alertable, never silent.
type Sweeper struct {
	db      TxBeginner
	payouts StuckPayoutStore
	workers LockedBalanceStore
	maxHold time.Duration
	log     *slog.Logger
}

func NewSweeper(db TxBeginner, payouts StuckPayoutStore, workers LockedBalanceStore, maxHold time.Duration, log *slog.Logger) *Sweeper {
	if maxHold <= 0 {
		maxHold = DefaultMaxHold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{db: db, payouts: payouts, workers: workers, maxHold: maxHold, log: log}
}

// Sweep resolves every payout stuck PENDING longer than maxHold and
// returns how many it recovered. Each recovery is its own transaction so
// one bad row cannot block the rest.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	stuck, err := s.payouts.ListStuckPending(ctx, time.Now().Add(-s.maxHold))
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, payout := range stuck {
		if err := s.recover(ctx, payout); err != nil {
			s.log.Error("stuck payout recovery failed",
				"payout_id", payout.ID, "worker_id", payout.WorkerID, "error", err)
			continue
		}
		recovered++
		s.log.Error("recovered stuck payout lock",
			"payout_id", payout.ID, "worker_id", payout.WorkerID,
			"gross", payout.GrossAmount, "pending_since", payout.CreatedAt)
	}
	return recovered, nil
}

func (s *Sweeper) recover(ctx context.Context, payout *models.Payout) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.workers.RestoreLocked(ctx, tx, payout.WorkerID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		// ErrNoRows: the lock is already gone, only the row is stale.
		return err
	}
	if err := s.payouts.MarkFailed(ctx, tx, payout.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Finalized concurrently; nothing to recover.
			return nil
		}
		return err
	}
	return tx.Commit(ctx)
}
