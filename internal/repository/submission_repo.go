package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clixo/backend/internal/models"
)

type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

// Create inserts a submission. submissions carries a UNIQUE
// (worker_id, task_id) constraint; a duplicate surfaces as pgconn error
// 23505.
func (r *SubmissionRepo) Create(ctx context.Context, s *models.Submission) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO submissions (id, worker_id, task_id, option_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, s.ID, s.WorkerID, s.TaskID, s.OptionID).Scan(&s.CreatedAt)
}

// ListByTask returns a task's submissions in insertion order. Settlement
// depends on this ordering for deterministic tie-breaking.
func (r *SubmissionRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Submission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, worker_id, task_id, option_id, created_at
		FROM submissions WHERE task_id = $1 ORDER BY created_at, id
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.WorkerID, &s.TaskID, &s.OptionID, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *SubmissionRepo) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*models.Submission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, worker_id, task_id, option_id, created_at
		FROM submissions WHERE worker_id = $1 ORDER BY created_at DESC
	`, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.WorkerID, &s.TaskID, &s.OptionID, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// ExistsForWorkerTask reports whether the worker already voted on the
// task.
func (r *SubmissionRepo) ExistsForWorkerTask(ctx context.Context, workerID, taskID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM submissions WHERE worker_id = $1 AND task_id = $2)
	`, workerID, taskID).Scan(&exists)
	return exists, err
}

// CreateOption adds a vote option to a task.
func (r *SubmissionRepo) CreateOption(ctx context.Context, o *models.Option) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO options (id, task_id, label)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, o.ID, o.TaskID, o.Label).Scan(&o.CreatedAt)
}

// GetOptionForTask returns the option only if it belongs to the task.
func (r *SubmissionRepo) GetOptionForTask(ctx context.Context, optionID, taskID uuid.UUID) (*models.Option, error) {
	var o models.Option
	err := r.pool.QueryRow(ctx, `
		SELECT id, task_id, label, created_at
		FROM options WHERE id = $1 AND task_id = $2
	`, optionID, taskID).Scan(&o.ID, &o.TaskID, &o.Label, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOptionsByTask returns the task's vote options in insertion order.
func (r *SubmissionRepo) ListOptionsByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Option, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, task_id, label, created_at
		FROM options WHERE task_id = $1 ORDER BY created_at, id
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Option
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.TaskID, &o.Label, &o.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}
