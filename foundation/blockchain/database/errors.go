package database

import (
	"errors"
	"fmt"
)

// Set of errors returned when a chain, a block or a transaction is rejected.
// None of them are fatal, the ledger keeps its current state.
var (
	ErrInvalidGenesis       = errors.New("first block is not the genesis block")
	ErrBrokenHashLink       = errors.New("previous hash does not match parent block")
	ErrTamperedBlock        = errors.New("block hash does not match its contents")
	ErrUnsolvedBlock        = fmt.Errorf("%w: hash does not meet difficulty", ErrTamperedBlock)
	ErrDifficultyJump       = errors.New("difficulty changed by more than one")
	ErrMultipleRewards      = errors.New("block has more than one reward transaction")
	ErrMissingReward        = errors.New("block has no reward transaction")
	ErrDuplicateTransaction = errors.New("transaction appears twice in block")
	ErrMalformedOutputMap   = errors.New("malformed output map")
	ErrMalformedTransaction = errors.New("malformed transaction")
	ErrMalformedBlockData   = errors.New("block data is not a list of transactions")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrBalanceExceeded      = errors.New("input amount exceeds ledger balance")
	ErrChainNotLonger       = errors.New("candidate chain is not longer")
	ErrPendingTransaction   = errors.New("sender already has a pending transaction")
	ErrAmountExceedsBalance = errors.New("amount exceeds balance")
	ErrNoTransactions       = errors.New("no valid transactions to mine")
)

// reasons maps each error to the stable code relayed to callers. The order
// matters since more specific errors wrap more general ones.
var reasons = []struct {
	err  error
	code string
}{
	{ErrInvalidGenesis, "InvalidGenesis"},
	{ErrBrokenHashLink, "BrokenHashLink"},
	{ErrUnsolvedBlock, "UnsolvedBlock"},
	{ErrTamperedBlock, "TamperedBlock"},
	{ErrDifficultyJump, "DifficultyJump"},
	{ErrMultipleRewards, "MultipleRewards"},
	{ErrMissingReward, "MissingReward"},
	{ErrDuplicateTransaction, "DuplicateTransaction"},
	{ErrMalformedOutputMap, "MalformedOutputMap"},
	{ErrMalformedTransaction, "MalformedTransaction"},
	{ErrMalformedBlockData, "MalformedBlockData"},
	{ErrInvalidSignature, "InvalidSignature"},
	{ErrBalanceExceeded, "BalanceExceeded"},
	{ErrChainNotLonger, "ChainNotLonger"},
	{ErrPendingTransaction, "PendingTransaction"},
	{ErrAmountExceedsBalance, "AmountExceedsBalance"},
	{ErrNoTransactions, "NoTransactions"},
}

// Reason returns the stable code for the error. Errors outside of the ledger
// taxonomy are reported as "Rejected" and a nil error as an empty string.
func Reason(err error) string {
	if err == nil {
		return ""
	}

	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.code
		}
	}

	return "Rejected"
}
