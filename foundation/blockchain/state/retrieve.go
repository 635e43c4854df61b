package state

import (
	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveBeneficiary returns the account receiving this node's rewards.
func (s *State) RetrieveBeneficiary() database.AccountID {
	return s.beneficiary.AccountID()
}

// RetrieveParams returns the economic settings of the ledger.
func (s *State) RetrieveParams() database.Params {
	return s.db.Params()
}

// RetrieveChain returns a copy of the current chain.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Chain()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool keyed by transaction id.
func (s *State) RetrieveMempool() map[string]database.Transaction {
	return s.mempool.Copy()
}

// RetrieveMempoolList returns the valid pending transactions, oldest first.
func (s *State) RetrieveMempoolList() []database.Transaction {
	return s.mempool.ValidTransactions()
}

// RetrieveBalance returns the balance of the account on the current chain.
func (s *State) RetrieveBalance(accountID database.AccountID) uint64 {
	return s.db.Balance(accountID)
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveStatus returns what this node reports to its peers.
func (s *State) RetrieveStatus() peer.PeerStatus {
	return peer.PeerStatus{
		LatestBlockHash: s.db.LatestBlock().Hash,
		ChainLength:     s.db.Length(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}
