package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/cryptochain/app/services/node/handlers"
	"github.com/ardanlabs/cryptochain/business/web/errs"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/state"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
	"github.com/ardanlabs/cryptochain/foundation/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const recipient = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"

type node struct {
	state   *state.State
	public  http.Handler
	private http.Handler
}

func newNode(t *testing.T) node {
	t.Helper()

	w, err := wallet.New()
	require.NoError(t, err)

	st, err := state.New(state.Config{
		Beneficiary: w,
		Host:        "localhost:9080",
		Params:      database.DefaultParams(),
	})
	require.NoError(t, err)

	cfg := handlers.MuxConfig{
		Shutdown:    make(chan os.Signal, 1),
		Log:         zap.NewNop().Sugar(),
		State:       st,
		Evts:        events.New("viewer:"),
		CORSOrigins: []string{"*"},
	}

	return node{
		state:   st,
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
	}
}

func call(t *testing.T, h http.Handler, method string, path string, body any, resp any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if resp != nil && w.Body.Len() > 0 {
		decoder := json.NewDecoder(w.Body)
		decoder.UseNumber()
		require.NoError(t, decoder.Decode(resp))
	}

	return w.Code
}

// =============================================================================

func TestMine(t *testing.T) {
	n := newNode(t)

	var chain []database.Block
	status := call(t, n.public, http.MethodGet, "/v1/blocks", nil, &chain)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, chain, 1)
	assert.Equal(t, database.Genesis().Hash, chain[0].Hash)

	status = call(t, n.public, http.MethodPost, "/v1/mine", map[string]any{"data": []string{"foo", "bar"}}, &chain)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, chain, 2)
	assert.NoError(t, database.ValidateChain(chain))

	var er errs.Response
	status = call(t, n.public, http.MethodPost, "/v1/mine", map[string]any{}, &er)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, er.Fields, "data")
}

func TestTransact(t *testing.T) {
	n := newNode(t)

	var resp struct {
		Type        string               `json:"type"`
		Transaction database.Transaction `json:"transaction"`
	}
	status := call(t, n.public, http.MethodPost, "/v1/transact", map[string]any{"recipient": recipient, "amount": 10}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", resp.Type)
	assert.EqualValues(t, 10, resp.Transaction.OutputMap[recipient])

	var pool map[string]database.Transaction
	call(t, n.public, http.MethodGet, "/v1/transaction-pool", nil, &pool)
	require.Contains(t, pool, resp.Transaction.ID)

	var er errs.Response
	status = call(t, n.public, http.MethodPost, "/v1/transact", map[string]any{"recipient": recipient, "amount": 5000}, &er)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "AmountExceedsBalance", er.Reason)

	status = call(t, n.public, http.MethodPost, "/v1/transact", map[string]any{"recipient": "bill", "amount": 5}, &er)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, er.Fields, "recipient")

	var chain []database.Block
	status = call(t, n.public, http.MethodGet, "/v1/mine-transactions", nil, &chain)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, chain, 2)

	var info struct {
		Address string `json:"address"`
		Balance uint64 `json:"balance"`
	}
	status = call(t, n.public, http.MethodGet, "/v1/wallet/"+recipient, nil, &info)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1010, info.Balance)

	var known []string
	call(t, n.public, http.MethodGet, "/v1/known-addresses", nil, &known)
	assert.Len(t, known, 2)

	er = errs.Response{}
	status = call(t, n.public, http.MethodGet, "/v1/mine-transactions", nil, &er)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NoTransactions", er.Reason)
}

func TestSubmitWalletTransaction(t *testing.T) {
	n := newNode(t)

	sender, err := wallet.New()
	require.NoError(t, err)

	tx, err := sender.CreateTransaction(recipient, 20, n.state.RetrieveChain(), n.state.RetrieveParams())
	require.NoError(t, err)

	var res state.Result
	status := call(t, n.public, http.MethodPost, "/v1/tx/submit", tx, &res)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, res.Accepted)

	forged := tx
	forged.OutputMap = map[database.AccountID]uint64{
		recipient:          1000,
		sender.AccountID(): 0,
	}

	var er errs.Response
	status = call(t, n.public, http.MethodPost, "/v1/tx/submit", forged, &er)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidSignature", er.Reason)
}

func TestProposeChain(t *testing.T) {
	local := newNode(t)
	remote := newNode(t)

	_, err := remote.state.Transact(recipient, 15)
	require.NoError(t, err)

	var chain []database.Block
	status := call(t, remote.public, http.MethodGet, "/v1/mine-transactions", nil, &chain)
	require.Equal(t, http.StatusOK, status)

	var res state.Result
	status = call(t, local.private, http.MethodPost, "/v1/node/chain/propose", chain, &res)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, res.Accepted)
	assert.Equal(t, remote.state.RetrieveLatestBlock().Hash, local.state.RetrieveLatestBlock().Hash)

	var er errs.Response
	status = call(t, local.private, http.MethodPost, "/v1/node/chain/propose", chain, &er)
	require.Equal(t, http.StatusNotAcceptable, status)
	assert.Equal(t, "ChainNotLonger", er.Reason)

	tampered := make([]database.Block, 0, 3)
	tampered = append(tampered, chain...)
	tampered = append(tampered, chain[1])
	status = call(t, local.private, http.MethodPost, "/v1/node/chain/propose", tampered, &er)
	require.Equal(t, http.StatusNotAcceptable, status)
	assert.Equal(t, "BrokenHashLink", er.Reason)
}

func TestPeers(t *testing.T) {
	n := newNode(t)

	status := call(t, n.private, http.MethodPost, "/v1/node/peers", map[string]string{"host": "localhost:9180"}, nil)
	require.Equal(t, http.StatusNoContent, status)

	var ps struct {
		ChainLength int `json:"chain_length"`
		KnownPeers  []struct {
			Host string `json:"host"`
		} `json:"known_peers"`
	}
	status = call(t, n.private, http.MethodGet, "/v1/node/status", nil, &ps)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, ps.ChainLength)
	require.Len(t, ps.KnownPeers, 1)
	assert.Equal(t, "localhost:9180", ps.KnownPeers[0].Host)

	var er errs.Response
	status = call(t, n.private, http.MethodPost, "/v1/node/peers", map[string]string{}, &er)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, er.Fields, "host")
}
