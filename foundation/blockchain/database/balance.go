package database

// CalculateBalance returns the balance of the account according to the chain.
// Blocks are walked from newest to oldest summing every output owed to the
// account. The walk stops after the newest block where the account sent a
// transaction, since the change output in that block already carries the
// account's balance. An account that never sent anything also holds the
// starting balance. Blocks that don't hold transactions are skipped.
func CalculateBalance(chain []Block, accountID AccountID, params Params) uint64 {
	var total uint64
	var hasSent bool

	for i := len(chain) - 1; i > 0; i-- {
		txs, err := DecodeTransactions(chain[i].Data)
		if err != nil {
			continue
		}

		for _, tx := range txs {
			if !tx.IsReward() && tx.Input.Address.Equal(accountID) {
				hasSent = true
			}

			if value, exists := tx.output(accountID); exists {
				total += value
			}
		}

		if hasSent {
			break
		}
	}

	if !hasSent {
		total += params.StartingBalance
	}

	return total
}
