package state

import (
	"slices"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainLength returns the number of blocks in the chain.
func (s *State) QueryChainLength() int {
	return s.db.Length()
}

// QueryTransactionsByAccount returns the mined transactions sent by or paying
// the account, oldest first. Blocks that don't hold transactions are skipped.
func (s *State) QueryTransactionsByAccount(accountID database.AccountID) []database.Transaction {
	var out []database.Transaction

	chain := s.db.Chain()
	for i := 1; i < len(chain); i++ {
		txs, err := database.DecodeTransactions(chain[i].Data)
		if err != nil {
			continue
		}

		for _, tx := range txs {
			if tx.Input.Address.Equal(accountID) {
				out = append(out, tx)
				continue
			}

			for id := range tx.OutputMap {
				if id.Equal(accountID) {
					out = append(out, tx)
					break
				}
			}
		}
	}

	return out
}

// QueryKnownAddresses returns every account paid by a mined transaction,
// ordered by address.
func (s *State) QueryKnownAddresses() []database.AccountID {
	known := make(map[database.AccountID]struct{})

	chain := s.db.Chain()
	for i := 1; i < len(chain); i++ {
		txs, err := database.DecodeTransactions(chain[i].Data)
		if err != nil {
			continue
		}

		for _, tx := range txs {
			for id := range tx.OutputMap {
				known[id] = struct{}{}
			}
		}
	}

	addresses := make([]database.AccountID, 0, len(known))
	for id := range known {
		addresses = append(addresses, id)
	}
	slices.Sort(addresses)

	return addresses
}
