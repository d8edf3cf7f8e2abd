package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clixo/backend/internal/models"
)

type FundingRepo struct {
	pool *pgxpool.Pool
}

func NewFundingRepo(pool *pgxpool.Pool) *FundingRepo {
	return &FundingRepo{pool: pool}
}

// CreateTx inserts a funding row inside the caller's transaction.
// fundings.tx_hash carries a UNIQUE constraint; a duplicate hash
// surfaces as pgconn error 23505 and doubles as the replay guard at
// commit time.
func (r *FundingRepo) CreateTx(ctx context.Context, tx pgx.Tx, f *models.Funding) error {
	return tx.QueryRow(ctx, `
		INSERT INTO fundings (id, user_id, task_id, credits, source, tx_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, f.ID, f.UserID, f.TaskID, f.Credits, f.Source, f.TxHash).Scan(&f.CreatedAt)
}

// ExistsByTxHash reports whether a funding with this transaction hash
// was already processed.
func (r *FundingRepo) ExistsByTxHash(ctx context.Context, txHash string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM fundings WHERE tx_hash = $1)
	`, txHash).Scan(&exists)
	return exists, err
}

func (r *FundingRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Funding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, task_id, credits, source, tx_hash, created_at
		FROM fundings WHERE task_id = $1 ORDER BY created_at DESC
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Funding
	for rows.Next() {
		var f models.Funding
		if err := rows.Scan(&f.ID, &f.UserID, &f.TaskID, &f.Credits, &f.Source, &f.TxHash, &f.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}
