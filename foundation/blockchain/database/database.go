// Package database handles the in memory ledger: the chain of sealed blocks,
// the rules that make a chain valid, and the transactions the blocks carry.
package database

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// ReplaceOptions controls the checks applied to a candidate chain.
type ReplaceOptions struct {
	ValidateTransactions bool
}

// Database manages the chain of blocks. Reads are lock free loads of an
// immutable snapshot, writers are serialized.
type Database struct {
	mu        sync.Mutex
	chain     atomic.Pointer[[]Block]
	params    Params
	evHandler func(v string, args ...any)
}

// New constructs a database holding only the genesis block.
func New(params Params, evHandler func(v string, args ...any)) *Database {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	db := Database{
		params:    params,
		evHandler: evHandler,
	}

	chain := []Block{Genesis()}
	db.chain.Store(&chain)

	return &db
}

// Params returns the economic settings the database validates with.
func (db *Database) Params() Params {
	return db.params
}

// Chain returns a copy of the current chain.
func (db *Database) Chain() []Block {
	return slices.Clone(*db.chain.Load())
}

// LatestBlock returns the last block of the chain.
func (db *Database) LatestBlock() Block {
	chain := *db.chain.Load()
	return chain[len(chain)-1]
}

// Length returns the number of blocks in the chain, genesis included.
func (db *Database) Length() int {
	return len(*db.chain.Load())
}

// Balance returns the balance of the account according to the current chain.
func (db *Database) Balance(accountID AccountID) uint64 {
	return CalculateBalance(*db.chain.Load(), accountID, db.params)
}

// AddBlock seals the data into a new block on top of the latest block and
// appends it. The write lock is held while mining so the latest block can't
// change underneath the puzzle. Only context cancellation or data that can't
// be hashed fails this call.
func (db *Database) AddBlock(ctx context.Context, data any) (Block, error) {
	return db.AddBlockFunc(ctx, func([]Block) (any, error) {
		return data, nil
	})
}

// AddBlockFunc is like AddBlock but builds the block data from the chain that
// is about to be extended, under the same write lock as the mining.
func (db *Database) AddBlockFunc(ctx context.Context, build func(chain []Block) (any, error)) (Block, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	chain := *db.chain.Load()

	data, err := build(chain)
	if err != nil {
		return Block{}, err
	}

	args := POWArgs{
		PrevBlock: chain[len(chain)-1],
		Data:      data,
		MineRate:  db.params.MineRate,
		EvHandler: db.evHandler,
	}

	block, err := POW(ctx, args)
	if err != nil {
		return Block{}, err
	}

	next := make([]Block, len(chain), len(chain)+1)
	copy(next, chain)
	next = append(next, block)
	db.chain.Store(&next)

	db.evHandler("database: AddBlock: blk[%d]: hash[%s]", len(next)-1, block.Hash)

	return block, nil
}

// ReplaceChain swaps the local chain for the candidate when the candidate is
// longer and valid. The local chain is left untouched on any rejection.
func (db *Database) ReplaceChain(candidate []Block, opts ReplaceOptions) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	local := *db.chain.Load()

	if len(candidate) <= len(local) {
		err := fmt.Errorf("%w: candidate %d, local %d", ErrChainNotLonger, len(candidate), len(local))
		db.evHandler("database: ReplaceChain: REJECTED: %s", err)
		return err
	}

	if err := ValidateChain(candidate); err != nil {
		db.evHandler("database: ReplaceChain: REJECTED: %s", err)
		return err
	}

	if opts.ValidateTransactions {
		if err := ValidTransactionData(candidate, db.params); err != nil {
			db.evHandler("database: ReplaceChain: REJECTED: %s", err)
			return err
		}
	}

	next := slices.Clone(candidate)
	db.chain.Store(&next)

	db.evHandler("database: ReplaceChain: REPLACED: length[%d]: latest[%s]", len(next), next[len(next)-1].Hash)

	return nil
}
