package worker

// Sync updates the peer list, mempool and chain from the known peers. The
// chain of a peer is only requested when it is longer than the local one, and
// it is applied under the same rules as a proposed chain.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {

		// Retrieve the status of this peer.
		peerStatus, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		// Add new peers to this nodes list.
		w.addNewPeers(peerStatus.KnownPeers)

		// If this peer has a longer chain, try to take it.
		if peerStatus.ChainLength > w.state.QueryChainLength() {
			w.evHandler("worker: sync: retrievePeerChain: %s: length[%d]", pr.Host, peerStatus.ChainLength)

			chain, err := w.state.NetRequestPeerChain(pr)
			if err != nil {
				w.evHandler("worker: sync: retrievePeerChain: %s: ERROR: %s", pr.Host, err)
				continue
			}

			if res := w.state.ReceiveCandidateChain(chain); !res.Accepted {
				w.evHandler("worker: sync: retrievePeerChain: %s: REJECTED: %s: %s", pr.Host, res.Reason, res.Message)
			}
		}

		// Retrieve the mempool from the peer.
		pool, err := w.state.NetRequestPeerMempool(pr)
		if err != nil {
			w.evHandler("worker: sync: retrievePeerMempool: %s: ERROR: %s", pr.Host, err)
			continue
		}
		for _, tx := range pool {
			if err := w.state.UpsertNodeTransaction(tx); err != nil {
				w.evHandler("worker: sync: retrievePeerMempool: %s: skip tx[%s]: %s", pr.Host, tx, err)
				continue
			}
			w.evHandler("worker: sync: retrievePeerMempool: %s: add tx[%s]", pr.Host, tx)
		}
	}

	// Let the peers know this node is available to chat.
	for _, pr := range w.state.RetrieveKnownPeers() {
		if err := w.state.NetRequestAddPeer(pr); err != nil {
			w.evHandler("worker: sync: addPeer: %s: ERROR: %s", pr.Host, err)
		}
	}
}
