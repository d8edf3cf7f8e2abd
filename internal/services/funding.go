package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clixo/backend/internal/chain"
	"github.com/clixo/backend/internal/models"
)

// TxBeginner abstracts transaction creation so tests don't need a
// pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// FundingTaskStore is the minimal task repository interface for funding.
type FundingTaskStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ApplyFunding(ctx context.Context, tx pgx.Tx, id uuid.UUID, credits int64) (applied, newFunded, budget int64, err error)
	Activate(ctx context.Context, id uuid.UUID) error
}

// FundingUserStore is the minimal user repository interface for funding.
type FundingUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	DeductBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (int64, error)
	AddBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (int64, error)
}

// FundingStore records funding events and answers replay lookups.
type FundingStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, f *models.Funding) error
	ExistsByTxHash(ctx context.Context, txHash string) (bool, error)
}

// FundingResult reports what a FundTask call applied and from where.
type FundingResult struct {
	Source           string `json:"source"`
	InternalApplied  int64  `json:"internal_applied"`
	DepositedCredits int64  `json:"deposited_credits,omitempty"`
	AppliedCredits   int64  `json:"applied_credits,omitempty"`
	ExcessCredits    int64  `json:"excess_credits,omitempty"`
	FundedAmount     int64  `json:"funded_amount"`
}

// FundingService reconciles a task's funding requirement against the
// owner's internal balance first, then an external chain deposit.
type FundingService struct {
	db                TxBeginner
	tasks             FundingTaskStore
	users             FundingUserStore
	fundings          FundingStore
	gateway           chain.Gateway
	settlementAddress string
	chainTimeout      time.Duration
	log               *slog.Logger
}

// NewFundingService returns a FundingService. settlementAddress is the
// server wallet deposits must be sent to; chainTimeout bounds all chain
// lookups and confirmation waits.
func NewFundingService(db TxBeginner, tasks FundingTaskStore, users FundingUserStore, fundings FundingStore, gateway chain.Gateway, settlementAddress string, chainTimeout time.Duration, log *slog.Logger) *FundingService {
	if log == nil {
		log = slog.Default()
	}
	return &FundingService{
		db:                db,
		tasks:             tasks,
		users:             users,
		fundings:          fundings,
		gateway:           gateway,
		settlementAddress: settlementAddress,
		chainTimeout:      chainTimeout,
		log:               log,
	}
}

// FundTask applies funding to the task: internal balance first, then the
// chain deposit identified by txHash if a gap remains. Each phase
// commits as one atomic unit or not at all; no ledger lock is held
// across chain I/O.
func (s *FundingService) FundTask(ctx context.Context, taskID uuid.UUID, txHash string) (*FundingResult, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.FullyFunded() {
		return nil, ErrAlreadyFunded
	}

	user, err := s.users.GetByID(ctx, task.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	result := &FundingResult{FundedAmount: task.FundedAmount}

	// Internal-balance phase.
	if user.Balance > 0 {
		usable := min(user.Balance, task.RemainingBudget())
		newFunded, applied, err := s.applyInternal(ctx, task, user.ID, usable)
		if err != nil {
			return nil, err
		}
		result.InternalApplied = applied
		result.FundedAmount = newFunded
	}

	if result.FundedAmount >= task.Budget {
		if err := s.tasks.Activate(ctx, taskID); err != nil {
			return nil, fmt.Errorf("activate task: %w", err)
		}
		result.Source = models.FundingSourceInternalBalance
		return result, nil
	}

	// Chain phase: the remaining gap needs an on-chain deposit. A call
	// that applied internal credits but carries no txHash is still a
	// successful partial funding.
	if txHash == "" {
		if result.InternalApplied > 0 {
			result.Source = models.FundingSourceInternalBalance
			return result, nil
		}
		return nil, ErrTxHashRequired
	}
	if exists, err := s.fundings.ExistsByTxHash(ctx, txHash); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrTxReplayed
	}

	chainCtx, cancel := context.WithTimeout(ctx, s.chainTimeout)
	defer cancel()

	deposit, err := s.gateway.GetTransaction(chainCtx, txHash)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(deposit.To, s.settlementAddress) {
		return nil, ErrWrongRecipient
	}
	if err := s.gateway.WaitForTransaction(chainCtx, txHash); err != nil {
		return nil, err
	}

	credits := chain.CreditsFromWei(deposit.Value)
	if credits <= 0 {
		return nil, ErrInvalidDepositAmount
	}

	applied, newFunded, budget, err := s.applyDeposit(ctx, task, user.ID, txHash, credits)
	if err != nil {
		return nil, err
	}
	result.Source = models.FundingSourceBlockchain
	result.DepositedCredits = credits
	result.AppliedCredits = applied
	result.ExcessCredits = credits - applied
	result.FundedAmount = newFunded

	if newFunded >= budget {
		if err := s.tasks.Activate(ctx, taskID); err != nil {
			return nil, fmt.Errorf("activate task: %w", err)
		}
	}

	s.log.Info("task funded from chain deposit",
		"task_id", taskID, "tx_hash", txHash,
		"deposited", credits, "applied", applied, "excess", credits-applied)
	return result, nil
}

// applyInternal moves up to usable credits from the owner's balance into
// the task in one transaction: deduct, apply (clamped at budget store-
// side), record the funding row, refund any clamped difference.
func (s *FundingService) applyInternal(ctx context.Context, task *models.Task, userID uuid.UUID, usable int64) (newFunded, applied int64, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := s.users.DeductBalance(ctx, tx, userID, usable); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Balance spent concurrently; nothing to apply internally.
			return task.FundedAmount, 0, nil
		}
		return 0, 0, err
	}
	applied, newFunded, _, err = s.tasks.ApplyFunding(ctx, tx, task.ID, usable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrAlreadyFunded
		}
		return 0, 0, err
	}
	if applied < usable {
		// Concurrent funding shrank the gap; return the difference.
		if _, err := s.users.AddBalance(ctx, tx, userID, usable-applied); err != nil {
			return 0, 0, err
		}
	}
	if applied > 0 {
		if err := s.fundings.CreateTx(ctx, tx, &models.Funding{
			ID:      uuid.New(),
			UserID:  userID,
			TaskID:  task.ID,
			Credits: applied,
			Source:  models.FundingSourceInternalBalance,
		}); err != nil {
			return 0, 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return newFunded, applied, nil
}

// applyDeposit credits a verified chain deposit: apply up to the
// remaining budget, record the gross deposited credits as the auditable
// funding row, and bank any excess on the owner's balance for reuse.
func (s *FundingService) applyDeposit(ctx context.Context, task *models.Task, userID uuid.UUID, txHash string, credits int64) (applied, newFunded, budget int64, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	defer tx.Rollback(ctx)

	applied, newFunded, budget, err = s.tasks.ApplyFunding(ctx, tx, task.ID, credits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, 0, ErrAlreadyFunded
		}
		return 0, 0, 0, err
	}
	if err := s.fundings.CreateTx(ctx, tx, &models.Funding{
		ID:      uuid.New(),
		UserID:  userID,
		TaskID:  task.ID,
		Credits: credits,
		Source:  models.FundingSourceBlockchain,
		TxHash:  &txHash,
	}); err != nil {
		return 0, 0, 0, err
	}
	if excess := credits - applied; excess > 0 {
		if _, err := s.users.AddBalance(ctx, tx, userID, excess); err != nil {
			return 0, 0, 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, 0, err
	}
	return applied, newFunded, budget, nil
}
