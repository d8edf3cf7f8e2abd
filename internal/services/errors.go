package services

import "errors"

// Sentinel errors classified at the handler boundary. Grouped by the
// failure class they represent: lookup, lifecycle state, input,
// replay, chain verification, funds.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrUserNotFound   = errors.New("task owner not found")
	ErrWorkerNotFound = errors.New("worker not found")
	ErrOptionNotFound = errors.New("option does not belong to this task")

	ErrAlreadyFunded    = errors.New("task is already fully funded")
	ErrTaskNotActive    = errors.New("task must be ACTIVE")
	ErrTaskNotCompleted = errors.New("task is not completed yet")
	ErrDuplicateVote    = errors.New("worker has already submitted for this task")

	ErrTxHashRequired       = errors.New("txHash required for remaining funding")
	ErrInvalidDepositAmount = errors.New("invalid deposit amount")

	ErrTxReplayed = errors.New("this transaction has already been processed")

	ErrWrongRecipient = errors.New("transaction not sent to settlement wallet")

	ErrNoSubmissions     = errors.New("no winning option found")
	ErrInsufficientFunds = errors.New("insufficient funded amount for settlement")

	ErrWalletNotLinked  = errors.New("wallet not linked")
	ErrNoPendingFunds   = errors.New("no funds available for withdrawal")
	ErrPayoutInProgress = errors.New("existing payout in progress")
	ErrBelowGasFee      = errors.New("payout amount does not cover gas fee")
)
