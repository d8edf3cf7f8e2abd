package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clixo/backend/internal/models"
)

type WorkerRepo struct {
	pool *pgxpool.Pool
}

func NewWorkerRepo(pool *pgxpool.Pool) *WorkerRepo {
	return &WorkerRepo{pool: pool}
}

func (r *WorkerRepo) Create(ctx context.Context, w *models.Worker) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO workers (id, wallet_address, pending_amount, locked_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, w.ID, w.WalletAddress, w.PendingAmount, w.LockedAmount).Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (r *WorkerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Worker, error) {
	var w models.Worker
	err := r.pool.QueryRow(ctx, `
		SELECT id, wallet_address, pending_amount, locked_amount, created_at, updated_at
		FROM workers WHERE id = $1
	`, id).Scan(&w.ID, &w.WalletAddress, &w.PendingAmount, &w.LockedAmount, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LockPending moves the full pending balance into locked_amount in one
// conditional update. The WHERE clause is the mutual-exclusion
// mechanism: two concurrent payouts cannot both pass locked_amount = 0.
// pgx.ErrNoRows means another payout holds the lock or there is nothing
// to pay out.
func (r *WorkerRepo) LockPending(ctx context.Context, tx pgx.Tx, id uuid.UUID) (locked int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE workers SET locked_amount = pending_amount, pending_amount = 0, updated_at = now()
		WHERE id = $1 AND locked_amount = 0 AND pending_amount > 0
		RETURNING locked_amount
	`, id).Scan(&locked)
	return locked, err
}

// Unlock zeroes locked_amount after a completed transfer.
func (r *WorkerRepo) Unlock(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE workers SET locked_amount = 0, updated_at = now() WHERE id = $1
	`, id)
	return err
}

// RestoreLocked rolls the lock back: pending_amount gets the locked
// credits back and the lock is released. pgx.ErrNoRows means there was
// no lock to restore.
func (r *WorkerRepo) RestoreLocked(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	result, err := tx.Exec(ctx, `
		UPDATE workers SET pending_amount = pending_amount + locked_amount, locked_amount = 0, updated_at = now()
		WHERE id = $1 AND locked_amount > 0
	`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AddPending credits reward amount to the worker's withdrawable balance.
func (r *WorkerRepo) AddPending(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE workers SET pending_amount = pending_amount + $1, updated_at = now() WHERE id = $2
	`, amount, id)
	return err
}
