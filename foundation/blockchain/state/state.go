// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/mempool"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/peer"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
)

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and transaction sharing.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx database.Transaction)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Beneficiary *wallet.Wallet
	Host        string
	Params      database.Params
	KnownPeers  *peer.PeerSet
	AutoMine    bool
	EvHandler   EventHandler
}

// State manages the blockchain database.
type State struct {
	beneficiary *wallet.Wallet
	host        string
	autoMine    bool
	evHandler   EventHandler

	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	db         *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {
	if cfg.Beneficiary == nil {
		return nil, errors.New("a beneficiary wallet is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		beneficiary: cfg.Beneficiary,
		host:        cfg.Host,
		autoMine:    cfg.AutoMine,
		evHandler:   ev,

		knownPeers: knownPeers,
		mempool:    mempool.New(),
		db:         database.New(cfg.Params, ev),

		// The worker is replaced by the call to worker.Run.
		Worker: nopWorker{},
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	return nil
}

// IsAutoMining reports whether pending transactions are mined without being
// asked to.
func (s *State) IsAutoMining() bool {
	return s.autoMine
}

// =============================================================================

// nopWorker is used until a real worker registers itself.
type nopWorker struct{}

func (nopWorker) Shutdown() {}
func (nopWorker) Sync() {}
func (nopWorker) SignalStartMining() {}
func (nopWorker) SignalCancelMining() func() { return func() {} }
func (nopWorker) SignalShareTx(database.Transaction) {}
