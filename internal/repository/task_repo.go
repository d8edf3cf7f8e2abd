package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clixo/backend/internal/models"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, user_id, title, budget, funded_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, t.ID, t.UserID, t.Title, t.Budget, t.FundedAmount, t.Status).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, budget, funded_amount, status, created_at, updated_at
		FROM tasks WHERE id = $1
	`, id).Scan(&t.ID, &t.UserID, &t.Title, &t.Budget, &t.FundedAmount, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ApplyFunding atomically increments funded_amount by up to credits,
// clamped at budget. It returns the amount actually applied and the new
// funded_amount. pgx.ErrNoRows means the task was already fully funded
// (or absent); the caller must not treat any part as applied. The
// clamp is store-side so concurrent funders cannot both pass a
// remaining-budget check and overfund.
func (r *TaskRepo) ApplyFunding(ctx context.Context, tx pgx.Tx, id uuid.UUID, credits int64) (applied, newFunded, budget int64, err error) {
	var prev int64
	err = tx.QueryRow(ctx, `
		UPDATE tasks t
		SET funded_amount = LEAST(t.funded_amount + $1, t.budget), updated_at = now()
		FROM (SELECT funded_amount AS prev FROM tasks WHERE id = $2 FOR UPDATE) old
		WHERE t.id = $2 AND old.prev < t.budget
		RETURNING old.prev, t.funded_amount, t.budget
	`, credits, id).Scan(&prev, &newFunded, &budget)
	if err != nil {
		return 0, 0, 0, err
	}
	return newFunded - prev, newFunded, budget, nil
}

// Activate transitions a fully funded DRAFT task to ACTIVE. The guard is
// in the WHERE clause; activating an already-ACTIVE or terminal task is
// a no-op.
func (r *TaskRepo) Activate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tasks SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3 AND funded_amount >= budget
	`, id, models.TaskStatusActive, models.TaskStatusDraft)
	return err
}

// Settle decrements funded_amount by exactly budget and moves the task
// to SETTLED, conditional on the task still being ACTIVE with enough
// funded credits. pgx.ErrNoRows means a concurrent settlement won or the
// task is in the wrong state.
func (r *TaskRepo) Settle(ctx context.Context, tx pgx.Tx, id uuid.UUID, budget int64) error {
	result, err := tx.Exec(ctx, `
		UPDATE tasks SET funded_amount = funded_amount - $2, status = $3, updated_at = now()
		WHERE id = $1 AND status = $4 AND funded_amount >= $2
	`, id, budget, models.TaskStatusSettled, models.TaskStatusActive)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
