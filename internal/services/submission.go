package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clixo/backend/internal/models"
)

// SubmissionTaskStore looks tasks up for vote validation.
type SubmissionTaskStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
}

// SubmissionStore persists and queries submissions and task options.
type SubmissionStore interface {
	Create(ctx context.Context, s *models.Submission) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Submission, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*models.Submission, error)
	ExistsForWorkerTask(ctx context.Context, workerID, taskID uuid.UUID) (bool, error)
	GetOptionForTask(ctx context.Context, optionID, taskID uuid.UUID) (*models.Option, error)
}

// SubmissionService records worker votes on task options.
type SubmissionService struct {
	tasks       SubmissionTaskStore
	submissions SubmissionStore
}

func NewSubmissionService(tasks SubmissionTaskStore, submissions SubmissionStore) *SubmissionService {
	return &SubmissionService{tasks: tasks, submissions: submissions}
}

// Create records one worker's vote. The task must be ACTIVE, the option
// must belong to it, and the worker may vote at most once per task (the
// unique constraint backs the pre-check).
func (s *SubmissionService) Create(ctx context.Context, workerID, taskID, optionID uuid.UUID) (*models.Submission, error) {
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

	if _, err := s.submissions.GetOptionForTask(ctx, optionID, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}

	if exists, err := s.submissions.ExistsForWorkerTask(ctx, workerID, taskID); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrDuplicateVote
	}

	sub := &models.Submission{
		ID:       uuid.New(),
		WorkerID: workerID,
		TaskID:   taskID,
		OptionID: optionID,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateVote
		}
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Submission, error) {
	return s.submissions.ListByTask(ctx, taskID)
}

func (s *SubmissionService) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*models.Submission, error) {
	return s.submissions.ListByWorker(ctx, workerID)
}
