package state

import (
	"fmt"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

// SubmitTransaction accepts a signed transaction from a wallet for inclusion.
// A sender may only have one pending transaction, resubmitting it with the
// same id replaces it.
func (s *State) SubmitTransaction(tx database.Transaction) Result {
	if err := s.validateTransaction(tx); err != nil {
		s.evHandler("state: SubmitTransaction: REJECTED: tx[%s]: %s", tx, err)
		return rejected(err)
	}

	if _, err := s.mempool.Submit(tx); err != nil {
		s.evHandler("state: SubmitTransaction: REJECTED: tx[%s]: %s", tx, err)
		return rejected(err)
	}

	s.evHandler("viewer: tx: accepted: tx[%s]", tx)

	s.Worker.SignalShareTx(tx)
	if s.autoMine {
		s.Worker.SignalStartMining()
	}

	return accepted()
}

// UpsertNodeTransaction accepts a transaction shared by another node. It is
// not shared again.
func (s *State) UpsertNodeTransaction(tx database.Transaction) error {
	if err := s.validateTransaction(tx); err != nil {
		return err
	}

	if _, err := s.mempool.Submit(tx); err != nil {
		return err
	}

	if s.autoMine {
		s.Worker.SignalStartMining()
	}

	return nil
}

// Transact sends the amount from this node's beneficiary wallet. When the
// wallet already has a pending transaction, that transaction is updated
// instead of creating a second one.
func (s *State) Transact(to database.AccountID, amount uint64) (database.Transaction, error) {
	w := s.beneficiary

	var tx database.Transaction
	var err error

	switch existing, exists := s.mempool.ExistingTransaction(w.AccountID()); {
	case exists:
		tx, err = existing.Update(w, to, amount)
	default:
		tx, err = w.CreateTransaction(to, amount, s.db.Chain(), s.db.Params())
	}
	if err != nil {
		return database.Transaction{}, err
	}

	if res := s.SubmitTransaction(tx); !res.Accepted {
		return database.Transaction{}, res.Err
	}

	return tx, nil
}

// =============================================================================

// validateTransaction checks the transaction on its own and against the
// balance the local chain grants the sender.
func (s *State) validateTransaction(tx database.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	if tx.IsReward() {
		return fmt.Errorf("%w: rewards are only created by miners", database.ErrMalformedTransaction)
	}

	balance := s.db.Balance(tx.Input.Address)
	if tx.Input.Amount > balance {
		return fmt.Errorf("%w: claimed %d, balance %d", database.ErrBalanceExceeded, tx.Input.Amount, balance)
	}

	return nil
}
