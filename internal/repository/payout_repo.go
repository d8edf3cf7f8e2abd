package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clixo/backend/internal/models"
)

type PayoutRepo struct {
	pool *pgxpool.Pool
}

func NewPayoutRepo(pool *pgxpool.Pool) *PayoutRepo {
	return &PayoutRepo{pool: pool}
}

// CreateTx inserts a PENDING payout row in the same transaction that
// locks the worker's balance, so a lock never exists without its row.
func (r *PayoutRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *models.Payout) error {
	return tx.QueryRow(ctx, `
		INSERT INTO payouts (id, worker_id, gross_amount, gas_fee, net_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, p.ID, p.WorkerID, p.GrossAmount, p.GasFee, p.NetAmount, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// MarkSuccess finalizes a PENDING payout with the external transaction
// reference. The status guard keeps terminal rows immutable.
func (r *PayoutRepo) MarkSuccess(ctx context.Context, tx pgx.Tx, id uuid.UUID, txHash string) error {
	result, err := tx.Exec(ctx, `
		UPDATE payouts SET status = $2, tx_hash = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, models.PayoutStatusSuccess, txHash, models.PayoutStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkFailed moves a PENDING payout to FAILED on rollback.
func (r *PayoutRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	result, err := tx.Exec(ctx, `
		UPDATE payouts SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`, id, models.PayoutStatusFailed, models.PayoutStatusPending)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByWorker returns the worker's payout history, newest first.
func (r *PayoutRepo) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]*models.Payout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, worker_id, gross_amount, gas_fee, net_amount, status, tx_hash, created_at, updated_at
		FROM payouts WHERE worker_id = $1 ORDER BY created_at DESC
	`, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Payout
	for rows.Next() {
		var p models.Payout
		if err := rows.Scan(&p.ID, &p.WorkerID, &p.GrossAmount, &p.GasFee, &p.NetAmount, &p.Status, &p.TxHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ListStuckPending returns PENDING payouts created before cutoff. These
// are the candidates for crash recovery: a process that died mid-payout
// leaves the row PENDING and the worker's funds locked.
func (r *PayoutRepo) ListStuckPending(ctx context.Context, cutoff time.Time) ([]*models.Payout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, worker_id, gross_amount, gas_fee, net_amount, status, tx_hash, created_at, updated_at
		FROM payouts WHERE status = $1 AND created_at < $2 ORDER BY created_at
	`, models.PayoutStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Payout
	for rows.Next() {
		var p models.Payout
		if err := rows.Scan(&p.ID, &p.WorkerID, &p.GrossAmount, &p.GasFee, &p.NetAmount, &p.Status, &p.TxHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
