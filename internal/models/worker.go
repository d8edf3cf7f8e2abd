package models

import (
	"time"

	"github.com/google/uuid"
)

// Worker holds reward balances. pending_amount is withdrawable;
// locked_amount is mid-payout. locked_amount > 0 means exactly one
// payout is in flight for this worker.
type Worker struct {
	ID            uuid.UUID `json:"id"`
	WalletAddress *string   `json:"wallet_address,omitempty"`
	PendingAmount int64     `json:"pending_amount"`
	LockedAmount  int64     `json:"locked_amount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
