// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/cryptochain/business/web/errs"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/state"
	"github.com/ardanlabs/cryptochain/foundation/events"
	"github.com/ardanlabs/cryptochain/foundation/validate"
	"github.com/ardanlabs/cryptochain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Blocks returns the full chain.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// Mine seals the posted data into a new block and responds with the chain.
// The chain is still proposed to the peers, but peers validate the
// transactions of every block they accept, so a block of free form data is
// rejected there with MalformedBlockData and stays local to this node.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req mineRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	block, err := h.State.MineBlock(ctx, req.Data)
	if err != nil {
		return fmt.Errorf("mining block: %w", err)
	}

	h.Log.Infow("mine", "traceid", web.GetTraceID(ctx), "hash", block.Hash, "nonce", block.Nonce, "difficulty", block.Difficulty)

	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// Transact sends value from the node's own wallet. A pending transaction of
// the wallet is updated instead of creating another one.
func (h Handlers) Transact(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req transactRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	tx, err := h.State.Transact(database.AccountID(req.Recipient), req.Amount)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("transact", "traceid", web.GetTraceID(ctx), "tx", tx, "to", req.Recipient, "amount", req.Amount)

	resp := struct {
		Type        string               `json:"type"`
		Transaction database.Transaction `json:"transaction"`
	}{
		Type:        "success",
		Transaction: tx,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitWalletTransaction adds a transaction signed by a wallet to the mempool.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var tx database.Transaction
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit tx", "traceid", web.GetTraceID(ctx), "tx", tx)

	res := h.State.SubmitTransaction(tx)
	if !res.Accepted {
		return errs.NewTrusted(res.Err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, res, http.StatusOK)
}

// TransactionPool returns the pending transactions keyed by id.
func (h Handlers) TransactionPool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// MineTransactions mines the valid pending transactions with this node's
// reward and responds with the chain.
func (h Handlers) MineTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.MineTransactions(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNoTransactions) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("mining transactions: %w", err)
	}

	h.Log.Infow("mine transactions", "traceid", web.GetTraceID(ctx), "hash", block.Hash)

	return web.Respond(ctx, w, h.State.RetrieveChain(), http.StatusOK)
}

// WalletInfo returns the address and balance of the node's wallet.
func (h Handlers) WalletInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := h.State.RetrieveBeneficiary()

	info := walletInfo{
		Address: address,
		Balance: h.State.RetrieveBalance(address),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Balance returns the balance of the specified address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address, err := database.ToAccountID(web.Param(r, "address"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	info := walletInfo{
		Address: address,
		Balance: h.State.RetrieveBalance(address),
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// KnownAddresses returns the addresses paid on the chain.
func (h Handlers) KnownAddresses(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.QueryKnownAddresses(), http.StatusOK)
}
