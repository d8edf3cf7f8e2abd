package models

import (
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is the payout lifecycle state.
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "PENDING"
	PayoutStatusSuccess PayoutStatus = "SUCCESS"
	PayoutStatusFailed  PayoutStatus = "FAILED"
)

// Terminal reports whether s is a final payout state.
func (s PayoutStatus) Terminal() bool {
	return s == PayoutStatusSuccess || s == PayoutStatusFailed
}

// Payout records one withdrawal attempt. A row is created PENDING before
// the external transfer is initiated and moved to SUCCESS or FAILED
// after; a rolled-back payout is marked FAILED, never left PENDING.
type Payout struct {
	ID          uuid.UUID    `json:"id"`
	WorkerID    uuid.UUID    `json:"worker_id"`
	GrossAmount int64        `json:"gross_amount"`
	GasFee      int64        `json:"gas_fee"`
	NetAmount   int64        `json:"net_amount"`
	Status      PayoutStatus `json:"status"`
	TxHash      *string      `json:"tx_hash,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
