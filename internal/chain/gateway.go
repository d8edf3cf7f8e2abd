package chain

import (
	"context"
	"errors"
	"math/big"
)

// ErrTxNotFound is returned when the transaction does not exist on chain.
var ErrTxNotFound = errors.New("transaction not found on chain")

// ErrTxFailed is returned when the transaction was mined but reverted.
var ErrTxFailed = errors.New("transaction failed on chain")

// WeiPerCredit is the fixed exchange rate: 1 credit = 0.001 ETH.
var WeiPerCredit = big.NewInt(1_000_000_000_000_000)

// Transaction is the subset of an on-chain transaction the ledger needs.
type Transaction struct {
	To    string
	Value *big.Int
}

// Gateway is the settlement network contract: look up a deposit, wait
// for its confirmation, and send an outbound transfer. Implementations
// must honor ctx cancellation; confirmation waits are expected to be
// bounded by the caller's deadline.
type Gateway interface {
	GetTransaction(ctx context.Context, hash string) (*Transaction, error)
	WaitForTransaction(ctx context.Context, hash string) error
	SendTransaction(ctx context.Context, to string, wei *big.Int) (hash string, err error)
}

// CreditsFromWei converts a native amount to credits, flooring toward
// zero.
func CreditsFromWei(wei *big.Int) int64 {
	if wei == nil || wei.Sign() <= 0 {
		return 0
	}
	return new(big.Int).Div(wei, WeiPerCredit).Int64()
}

// WeiFromCredits converts credits to the native amount.
func WeiFromCredits(credits int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(credits), WeiPerCredit)
}
