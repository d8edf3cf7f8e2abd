package models

import (
	"time"

	"github.com/google/uuid"
)

// Funding source enums.
const (
	FundingSourceInternalBalance = "INTERNAL_BALANCE"
	FundingSourceBlockchain      = "BLOCKCHAIN"
)

// Funding is an append-only record of one funding event. For blockchain
// fundings, Credits is the full deposited amount (gross), not the
// portion applied to the task. TxHash is unique across all rows; that
// uniqueness is the replay guard.
type Funding struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Credits   int64     `json:"credits"`
	Source    string    `json:"source"`
	TxHash    *string   `json:"tx_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
