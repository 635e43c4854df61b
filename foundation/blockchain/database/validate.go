package database

import "fmt"

// ValidTransactionData checks the transactions of every block after genesis.
// Each block must hold exactly one reward paying the mining reward, no id
// may appear twice, no sender may spend twice, every transaction must be
// valid on its own, and no sender may claim a balance above the one the
// preceding blocks grant them.
func ValidTransactionData(chain []Block, params Params) error {
	for i := 1; i < len(chain); i++ {
		txs, err := DecodeTransactions(chain[i].Data)
		if err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}

		var rewards int
		ids := make(map[string]struct{})
		senders := make(map[AccountID]struct{})

		for _, tx := range txs {
			if tx.IsReward() {
				rewards++
				if rewards > 1 {
					return fmt.Errorf("block[%d]: %w", i, ErrMultipleRewards)
				}
			}

			if _, exists := ids[tx.ID]; exists {
				return fmt.Errorf("block[%d]: %w: id %s", i, ErrDuplicateTransaction, tx.ID)
			}
			ids[tx.ID] = struct{}{}

			if err := tx.Validate(); err != nil {
				return fmt.Errorf("block[%d]: tx[%s]: %w", i, tx.ID, err)
			}

			if tx.IsReward() {
				for _, value := range tx.OutputMap {
					if value != params.MiningReward {
						return fmt.Errorf("block[%d]: %w: reward %d, exp %d", i, ErrMalformedOutputMap, value, params.MiningReward)
					}
				}
				continue
			}

			sender := normalize(tx.Input.Address)
			if _, exists := senders[sender]; exists {
				return fmt.Errorf("block[%d]: %w: sender %s spends twice", i, ErrDuplicateTransaction, tx.Input.Address)
			}
			senders[sender] = struct{}{}

			balance := CalculateBalance(chain[:i], tx.Input.Address, params)
			if tx.Input.Amount > balance {
				return fmt.Errorf("block[%d]: tx[%s]: %w: claimed %d, balance %d", i, tx.ID, ErrBalanceExceeded, tx.Input.Amount, balance)
			}
		}

		if rewards == 0 {
			return fmt.Errorf("block[%d]: %w", i, ErrMissingReward)
		}
	}

	return nil
}
