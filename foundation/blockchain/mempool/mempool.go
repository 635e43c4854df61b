// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

// Mempool represents a cache of pending transactions keyed by transaction id.
type Mempool struct {
	mu   sync.RWMutex
	pool map[string]database.Transaction
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Transaction),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx database.Transaction) (int, error) {
	if tx.ID == "" {
		return 0, errors.New("transaction has no id")
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.ID] = tx

	return len(mp.pool), nil
}

// Submit adds or replaces a transaction unless its sender already has a
// different transaction pending. A transaction with the same id replaces the
// pending one, which is how a wallet updates its pending transaction.
func (mp *Mempool) Submit(tx database.Transaction) (int, error) {
	if tx.ID == "" {
		return 0, errors.New("transaction has no id")
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if existing, exists := mp.existing(tx.Input.Address); exists && existing.ID != tx.ID {
		return 0, fmt.Errorf("%w: %s has %s", database.ErrPendingTransaction, tx.Input.Address, existing.ID)
	}

	mp.pool[tx.ID] = tx

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Transaction)
}

// Copy returns a copy of the pool keyed by transaction id.
func (mp *Mempool) Copy() map[string]database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make(map[string]database.Transaction, len(mp.pool))
	for id, tx := range mp.pool {
		cpy[id] = tx
	}

	return cpy
}

// ExistingTransaction returns the pending transaction sent by the account.
func (mp *Mempool) ExistingTransaction(accountID database.AccountID) (database.Transaction, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.existing(accountID)
}

// ValidTransactions returns the pending transactions that pass validation,
// oldest first.
func (mp *Mempool) ValidTransactions() []database.Transaction {
	mp.mu.RLock()
	txs := make([]database.Transaction, 0, len(mp.pool))
	for _, tx := range mp.pool {
		if tx.Validate() == nil {
			txs = append(txs, tx)
		}
	}
	mp.mu.RUnlock()

	sort.Sort(byTimestamp(txs))

	return txs
}

// ClearBlockchainTransactions removes every pending transaction that was
// included in a block of the chain.
func (mp *Mempool) ClearBlockchainTransactions(chain []database.Block) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for i := 1; i < len(chain); i++ {
		txs, err := database.DecodeTransactions(chain[i].Data)
		if err != nil {
			continue
		}

		for _, tx := range txs {
			if _, exists := mp.pool[tx.ID]; exists {
				delete(mp.pool, tx.ID)
				removed++
			}
		}
	}

	return removed
}

// =============================================================================

// existing must be called while holding a lock.
func (mp *Mempool) existing(accountID database.AccountID) (database.Transaction, bool) {
	for _, tx := range mp.pool {
		if !tx.IsReward() && tx.Input.Address.Equal(accountID) {
			return tx, true
		}
	}

	return database.Transaction{}, false
}

// =============================================================================

// byTimestamp provides sorting support by the input timestamp, falling back
// on the id so the order is stable across calls.
type byTimestamp []database.Transaction

// Len returns the number of transactions in the list.
func (bt byTimestamp) Len() int {
	return len(bt)
}

// Less helps to sort the list by timestamp in ascending order.
func (bt byTimestamp) Less(i, j int) bool {
	if bt[i].Input.Timestamp == bt[j].Input.Timestamp {
		return bt[i].ID < bt[j].ID
	}

	return bt[i].Input.Timestamp < bt[j].Input.Timestamp
}

// Swap moves transactions in the order of the timestamp value.
func (bt byTimestamp) Swap(i, j int) {
	bt[i], bt[j] = bt[j], bt[i]
}
