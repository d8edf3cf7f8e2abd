package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clixo/backend/internal/models"
)

// SettlementTaskStore is the minimal task repository interface for
// settlement.
type SettlementTaskStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Settle(ctx context.Context, tx pgx.Tx, id uuid.UUID, budget int64) error
}

// SettlementSubmissionStore provides a task's submissions in insertion
// order.
type SettlementSubmissionStore interface {
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Submission, error)
}

// SettlementWorkerStore credits rewards to workers.
type SettlementWorkerStore interface {
	AddPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) error
}

// WorkerReward is one worker's share in a reward preview.
type WorkerReward struct {
	WorkerID uuid.UUID `json:"worker_id"`
	Reward   float64   `json:"reward"`
}

// RewardPreview is the read-only reward calculation.
type RewardPreview struct {
	TaskID          uuid.UUID      `json:"task_id"`
	WinningOptionID uuid.UUID      `json:"winning_option_id"`
	EligibleWorkers int            `json:"eligible_workers"`
	RewardPerWorker float64        `json:"reward_per_worker"`
	Rewards         []WorkerReward `json:"rewards"`
}

// SettlementResult reports an applied settlement.
type SettlementResult struct {
	TaskID          uuid.UUID         `json:"task_id"`
	WinningOptionID uuid.UUID         `json:"winning_option_id"`
	Winners         int               `json:"winners"`
	RewardPerWorker int64             `json:"reward_per_worker"`
	TotalReward     int64             `json:"total_reward"`
	Remainder       int64             `json:"remainder"`
	Status          models.TaskStatus `json:"status"`
}

// SettlementService tallies submission votes and distributes rewards to
// the winning workers.
type SettlementService struct {
	db          TxBeginner
	tasks       SettlementTaskStore
	submissions SettlementSubmissionStore
	workers     SettlementWorkerStore
	log         *slog.Logger
}

func NewSettlementService(db TxBeginner, tasks SettlementTaskStore, submissions SettlementSubmissionStore, workers SettlementWorkerStore, log *slog.Logger) *SettlementService {
	if log == nil {
		log = slog.Default()
	}
	return &SettlementService{db: db, tasks: tasks, submissions: submissions, workers: workers, log: log}
}

// tallyVotes counts submissions per option and returns the winner and
// its eligible submissions. The leader is replaced only on a strictly
// greater count, so the option that first exceeded the previous maximum
// wins ties regardless of later iteration order. Preview and settle
// share this so they always agree.
func tallyVotes(submissions []*models.Submission) (winningOptionID uuid.UUID, winners []*models.Submission, err error) {
	if len(submissions) == 0 {
		return uuid.Nil, nil, ErrNoSubmissions
	}

	counts := make(map[uuid.UUID]int)
	maxVotes := 0
	for _, sub := range submissions {
		counts[sub.OptionID]++
		if counts[sub.OptionID] > maxVotes {
			maxVotes = counts[sub.OptionID]
			winningOptionID = sub.OptionID
		}
	}

	for _, sub := range submissions {
		if sub.OptionID == winningOptionID {
			winners = append(winners, sub)
		}
	}
	return winningOptionID, winners, nil
}

// PreviewRewards computes the per-worker reward for a COMPLETED task
// without mutating anything. The per-worker amount is the unrounded
// division; the settled amount is its floor.
func (s *SettlementService) PreviewRewards(ctx context.Context, taskID uuid.UUID) (*RewardPreview, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.Status != models.TaskStatusCompleted {
		return nil, ErrTaskNotCompleted
	}

	subs, err := s.submissions.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	winningOptionID, winners, err := tallyVotes(subs)
	if err != nil {
		return nil, err
	}

	rewardPerWorker := float64(task.Budget) / float64(len(winners))
	rewards := make([]WorkerReward, 0, len(winners))
	for _, sub := range winners {
		rewards = append(rewards, WorkerReward{WorkerID: sub.WorkerID, Reward: rewardPerWorker})
	}
	return &RewardPreview{
		TaskID:          taskID,
		WinningOptionID: winningOptionID,
		EligibleWorkers: len(winners),
		RewardPerWorker: rewardPerWorker,
		Rewards:         rewards,
	}, nil
}

// SettleRewards distributes floor(budget/winners) to every winning
// worker and moves the task to SETTLED, decrementing funded_amount by
// the full budget. The ACTIVE-status requirement is the exactly-once
// guard: a second call on a SETTLED task fails and mutates nothing. The
// division remainder stays undistributed.
func (s *SettlementService) SettleRewards(ctx context.Context, taskID uuid.UUID) (*SettlementResult, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if task.Status != models.TaskStatusActive {
		return nil, ErrTaskNotActive
	}
	if task.FundedAmount < task.Budget {
		return nil, ErrInsufficientFunds
	}

	subs, err := s.submissions.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	winningOptionID, winners, err := tallyVotes(subs)
	if err != nil {
		return nil, err
	}

	rewardPerWorker := task.Budget / int64(len(winners))

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for _, sub := range winners {
		if err := s.workers.AddPending(ctx, tx, sub.WorkerID, rewardPerWorker); err != nil {
			return nil, fmt.Errorf("credit worker %s: %w", sub.WorkerID, err)
		}
	}
	if err := s.tasks.Settle(ctx, tx, taskID, task.Budget); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race to a concurrent settlement; nothing applied.
			return nil, ErrTaskNotActive
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	remainder := task.Budget % int64(len(winners))
	s.log.Info("task settled",
		"task_id", taskID, "winners", len(winners),
		"reward_per_worker", rewardPerWorker, "remainder", remainder)

	return &SettlementResult{
		TaskID:          taskID,
		WinningOptionID: winningOptionID,
		Winners:         len(winners),
		RewardPerWorker: rewardPerWorker,
		TotalReward:     task.Budget,
		Remainder:       remainder,
		Status:          models.TaskStatusSettled,
	}, nil
}
