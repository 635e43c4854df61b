package state

import (
	"context"
	"strings"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

// MineBlock seals the data into a new block, appends it to the chain and
// proposes the chain to the known peers.
func (s *State) MineBlock(ctx context.Context, data any) (database.Block, error) {
	s.evHandler("state: MineBlock: MINING: started")
	defer s.evHandler("state: MineBlock: MINING: completed")

	block, err := s.db.AddBlock(ctx, data)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("viewer: block: blk[%d]: hash[%s]", s.db.Length()-1, block.Hash)

	if err := s.NetSendChainToPeers(); err != nil {
		s.evHandler("state: MineBlock: NetSendChainToPeers: WARNING: %s", err)
	}

	return block, nil
}

// MineTransactions mines the valid pending transactions together with the
// reward for this node's beneficiary. The mined transactions are removed from
// the mempool and the chain is proposed to the known peers.
func (s *State) MineTransactions(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineTransactions: MINING: started")
	defer s.evHandler("state: MineTransactions: MINING: completed")

	params := s.db.Params()
	pending := s.mempool.ValidTransactions()

	var mined []database.Transaction
	build := func(chain []database.Block) (any, error) {
		mined = s.selectTransactions(chain, params, pending)
		if len(mined) == 0 {
			return nil, database.ErrNoTransactions
		}

		data := make([]database.Transaction, 0, len(mined)+1)
		data = append(data, mined...)
		data = append(data, database.NewRewardTransaction(s.beneficiary.AccountID(), params.MiningReward))

		return data, nil
	}

	block, err := s.db.AddBlockFunc(ctx, build)
	if err != nil {
		return database.Block{}, err
	}

	for _, tx := range mined {
		s.mempool.Delete(tx.ID)
	}

	s.evHandler("viewer: block: blk[%d]: hash[%s]: txs[%d]", s.db.Length()-1, block.Hash, len(mined))

	if err := s.NetSendChainToPeers(); err != nil {
		s.evHandler("state: MineTransactions: NetSendChainToPeers: WARNING: %s", err)
	}

	return block, nil
}

// selectTransactions keeps the ordinary transactions whose senders hold the
// balance they claim on the chain, at most one per sender.
func (s *State) selectTransactions(chain []database.Block, params database.Params, pending []database.Transaction) []database.Transaction {
	senders := make(map[string]struct{})

	var txs []database.Transaction
	for _, tx := range pending {
		if tx.IsReward() {
			continue
		}

		sender := strings.ToLower(string(tx.Input.Address))
		if _, exists := senders[sender]; exists {
			s.evHandler("state: MineTransactions: skip: tx[%s]: sender already in block", tx)
			continue
		}

		balance := database.CalculateBalance(chain, tx.Input.Address, params)
		if tx.Input.Amount > balance {
			s.evHandler("state: MineTransactions: skip: tx[%s]: claimed %d, balance %d", tx, tx.Input.Amount, balance)
			continue
		}

		senders[sender] = struct{}{}
		txs = append(txs, tx)
	}

	return txs
}
