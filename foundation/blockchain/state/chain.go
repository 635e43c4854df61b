package state

import "github.com/ardanlabs/cryptochain/foundation/blockchain/database"

// ReceiveCandidateChain takes a chain received from a peer and replaces the
// local chain with it when it is longer and valid, transactions included.
// Pending transactions mined in the accepted chain leave the mempool.
func (s *State) ReceiveCandidateChain(candidate []database.Block) Result {
	s.evHandler("state: ReceiveCandidateChain: started: length[%d]", len(candidate))
	defer s.evHandler("state: ReceiveCandidateChain: completed")

	// If a mining operation is running it needs to stop so the candidate can
	// be applied. The mining G will not start over until done is called.
	if len(candidate) > s.db.Length() {
		done := s.Worker.SignalCancelMining()
		defer func() {
			s.evHandler("state: ReceiveCandidateChain: signal mining operation to terminate")
			done()
		}()
	}

	opts := database.ReplaceOptions{
		ValidateTransactions: true,
	}

	if err := s.db.ReplaceChain(candidate, opts); err != nil {
		return rejected(err)
	}

	removed := s.mempool.ClearBlockchainTransactions(candidate)
	s.evHandler("viewer: chain: replaced: length[%d]: cleared txs[%d]", len(candidate), removed)

	return accepted()
}
