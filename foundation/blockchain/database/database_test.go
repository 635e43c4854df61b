package database_test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/digest"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	toID     = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
	minerID  = database.AccountID("0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8")
)

// =============================================================================

func Test_ValidChain(t *testing.T) {
	t.Log("Given the need to validate a chain of blocks.")
	{
		t.Logf("\tTest 0:\tWhen mining the blocks a1, a2 and a3.")
		{
			chain := mineChain(t, "a1", "a2", "a3")

			if err := database.ValidateChain(chain); err != nil {
				t.Fatalf("\t%s\tShould accept an unmodified chain: %s", failed, err)
			}
			t.Logf("\t%s\tShould accept an unmodified chain.", success)

			original := chain[2].Hash
			chain[2].Hash = "fake hash"
			if err := database.ValidateChain(chain); !errors.Is(err, database.ErrTamperedBlock) {
				t.Fatalf("\t%s\tShould reject a fake hash: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a fake hash.", success)

			chain[2].Hash = original
			chain[2].Data = "fake data"
			if err := database.ValidateChain(chain); !errors.Is(err, database.ErrTamperedBlock) {
				t.Fatalf("\t%s\tShould reject fake data: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject fake data.", success)
		}

		t.Logf("\tTest 1:\tWhen a single field of a block is corrupted.")
		{
			tt := []struct {
				name    string
				corrupt func(b *database.Block)
				exp     error
			}{
				{"previousHash", func(b *database.Block) { b.PrevHash = "broken-hash" }, database.ErrBrokenHashLink},
				{"hash", func(b *database.Block) { b.Hash = digest.ZeroHash }, database.ErrTamperedBlock},
				{"data", func(b *database.Block) { b.Data = "corrupted" }, database.ErrTamperedBlock},
				{"difficulty", func(b *database.Block) { b.Difficulty += 3 }, database.ErrTamperedBlock},
				{"nonce", func(b *database.Block) { b.Nonce++ }, database.ErrTamperedBlock},
			}

			chain := mineChain(t, "b1", "b2", "b3")

			for _, tst := range tt {
				for i := 1; i < len(chain); i++ {
					corrupted := slices.Clone(chain)
					tst.corrupt(&corrupted[i])

					if err := database.ValidateChain(corrupted); !errors.Is(err, tst.exp) {
						t.Fatalf("\t%s\tShould reject a corrupted %s in block %d: %v", failed, tst.name, i, err)
					}
				}
				t.Logf("\t%s\tShould reject a corrupted %s in any block.", success, tst.name)
			}
		}

		t.Logf("\tTest 2:\tWhen the first block is not genesis.")
		{
			chain := mineChain(t, "c1")

			if err := database.ValidateChain(chain[1:]); !errors.Is(err, database.ErrInvalidGenesis) {
				t.Fatalf("\t%s\tShould reject a chain without genesis: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a chain without genesis.", success)

			fake := database.Genesis()
			fake.Data = []string{"not", "genesis"}
			chain[0] = fake
			if database.IsValidChain(chain) {
				t.Fatalf("\t%s\tShould reject a chain with a fake genesis.", failed)
			}
			t.Logf("\t%s\tShould reject a chain with a fake genesis.", success)

			if database.IsValidChain(nil) {
				t.Fatalf("\t%s\tShould reject an empty chain.", failed)
			}
			t.Logf("\t%s\tShould reject an empty chain.", success)
		}

		t.Logf("\tTest 3:\tWhen a block jumps in difficulty.")
		{
			chain := mineChain(t, "d1")
			prev := chain[1]

			jumped := seal(prev, "d2", prev.Difficulty+3)
			chain = append(chain, jumped)

			if err := database.ValidateChain(chain); !errors.Is(err, database.ErrDifficultyJump) {
				t.Fatalf("\t%s\tShould reject a difficulty jump: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a difficulty jump.", success)

			chain[2] = seal(prev, "d2", prev.Difficulty+1)
			if err := database.ValidateChain(chain); err != nil {
				t.Fatalf("\t%s\tShould accept a difficulty step of one: %s", failed, err)
			}
			t.Logf("\t%s\tShould accept a difficulty step of one.", success)
		}
	}
}

func Test_ReplaceChain(t *testing.T) {
	t.Log("Given the need to replace the local chain with a candidate.")
	{
		t.Logf("\tTest 0:\tWhen the candidate is not longer.")
		{
			db := database.New(database.DefaultParams(), nil)
			if _, err := db.AddBlock(context.Background(), "local"); err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %s", failed, err)
			}
			before := db.Chain()

			shorter := []database.Block{database.Genesis()}
			if err := db.ReplaceChain(shorter, database.ReplaceOptions{}); !errors.Is(err, database.ErrChainNotLonger) {
				t.Fatalf("\t%s\tShould reject a shorter chain: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a shorter chain.", success)

			same := mineChain(t, "other")
			if err := db.ReplaceChain(same, database.ReplaceOptions{}); !errors.Is(err, database.ErrChainNotLonger) {
				t.Fatalf("\t%s\tShould reject a chain of the same length: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a chain of the same length.", success)

			if !reflect.DeepEqual(before, db.Chain()) {
				t.Fatalf("\t%s\tShould not change the local chain.", failed)
			}
			t.Logf("\t%s\tShould not change the local chain.", success)
		}

		t.Logf("\tTest 1:\tWhen the candidate is longer but invalid.")
		{
			db := database.New(database.DefaultParams(), nil)

			candidate := mineChain(t, "x1", "x2")
			candidate[1].Hash = "some-fake-hash"

			if err := db.ReplaceChain(candidate, database.ReplaceOptions{}); !errors.Is(err, database.ErrTamperedBlock) {
				t.Fatalf("\t%s\tShould reject an invalid chain: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject an invalid chain.", success)

			if db.Length() != 1 {
				t.Fatalf("\t%s\tShould not change the local chain: length %d", failed, db.Length())
			}
			t.Logf("\t%s\tShould not change the local chain.", success)
		}

		t.Logf("\tTest 2:\tWhen the candidate is longer and valid.")
		{
			db := database.New(database.DefaultParams(), nil)
			candidate := mineChain(t, "y1", "y2")

			if err := db.ReplaceChain(candidate, database.ReplaceOptions{}); err != nil {
				t.Fatalf("\t%s\tShould accept the candidate: %s", failed, err)
			}
			t.Logf("\t%s\tShould accept the candidate.", success)

			if !reflect.DeepEqual(candidate, db.Chain()) {
				t.Fatalf("\t%s\tShould hold exactly the candidate chain.", failed)
			}
			t.Logf("\t%s\tShould hold exactly the candidate chain.", success)

			candidate[1].Data = "changed after the fact"
			if db.Chain()[1].Data != "y1" {
				t.Fatalf("\t%s\tShould not share the candidate's backing array.", failed)
			}
			t.Logf("\t%s\tShould not share the candidate's backing array.", success)
		}

		t.Logf("\tTest 3:\tWhen transaction data is validated.")
		{
			db := database.New(database.DefaultParams(), nil)
			candidate := mineChain(t, "not transactions")

			err := db.ReplaceChain(candidate, database.ReplaceOptions{ValidateTransactions: true})
			if !errors.Is(err, database.ErrMalformedBlockData) {
				t.Fatalf("\t%s\tShould reject a block without transactions: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a block without transactions.", success)

			if db.Length() != 1 {
				t.Fatalf("\t%s\tShould not change the local chain: length %d", failed, db.Length())
			}
			t.Logf("\t%s\tShould not change the local chain.", success)
		}
	}
}

func Test_WireChain(t *testing.T) {
	t.Log("Given the need to accept a chain received as JSON.")
	{
		t.Logf("\tTest 0:\tWhen the chain carries transactions.")
		{
			ctx := context.Background()
			params := database.DefaultParams()
			sender := newSigner(t)

			local := database.New(params, nil)

			tx, err := database.NewTransaction(sender, local.Balance(sender.AccountID()), toID, 75)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
			}

			data := []database.Transaction{tx, database.NewRewardTransaction(minerID, params.MiningReward)}
			if _, err := local.AddBlock(ctx, data); err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %s", failed, err)
			}

			wire, err := json.Marshal(local.Chain())
			if err != nil {
				t.Fatalf("\t%s\tShould be able to marshal the chain: %s", failed, err)
			}

			dec := json.NewDecoder(bytes.NewReader(wire))
			dec.UseNumber()

			var received []database.Block
			if err := dec.Decode(&received); err != nil {
				t.Fatalf("\t%s\tShould be able to unmarshal the chain: %s", failed, err)
			}

			if _, ok := received[1].Data.([]any); !ok {
				t.Fatalf("\t%s\tShould hold generic data after decoding: %T", failed, received[1].Data)
			}

			remote := database.New(params, nil)
			if err := remote.ReplaceChain(received, database.ReplaceOptions{ValidateTransactions: true}); err != nil {
				t.Fatalf("\t%s\tShould accept the received chain: %s", failed, err)
			}
			t.Logf("\t%s\tShould accept the received chain.", success)

			for _, id := range []database.AccountID{sender.AccountID(), toID, minerID} {
				if got, exp := remote.Balance(id), local.Balance(id); got != exp {
					t.Fatalf("\t%s\tShould agree on the balance of %s: got %d, exp %d", failed, id, got, exp)
				}
			}
			t.Logf("\t%s\tShould agree on every balance.", success)

			if _, err := remote.AddBlock(ctx, []database.Transaction{database.NewRewardTransaction(minerID, params.MiningReward)}); err != nil {
				t.Fatalf("\t%s\tShould be able to mine on the received chain: %s", failed, err)
			}

			if err := database.ValidTransactionData(remote.Chain(), params); err != nil {
				t.Fatalf("\t%s\tShould keep valid transaction data: %s", failed, err)
			}
			t.Logf("\t%s\tShould be able to mine on the received chain.", success)
		}
	}
}

// =============================================================================

type signer struct {
	pk *ecdsa.PrivateKey
}

func newSigner(t *testing.T) signer {
	pk, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	return signer{pk: pk}
}

func (s signer) AccountID() database.AccountID {
	return database.PublicKeyToAccountID(s.pk.PublicKey)
}

func (s signer) Sign(value any) (string, error) {
	return signature.Sign(value, s.pk)
}

// mineChain mines one block per payload on top of genesis.
func mineChain(t *testing.T, payloads ...any) []database.Block {
	db := database.New(database.DefaultParams(), nil)

	for _, payload := range payloads {
		if _, err := db.AddBlock(context.Background(), payload); err != nil {
			t.Fatalf("Should be able to mine a block: %s", err)
		}
	}

	return db.Chain()
}

// seal solves the puzzle for a block at the specified difficulty.
func seal(prev database.Block, data any, difficulty uint) database.Block {
	b := database.Block{
		Timestamp:  prev.Timestamp + 1,
		PrevHash:   prev.Hash,
		Difficulty: difficulty,
		Data:       data,
	}

	for {
		b.Hash = b.ComputeHash()
		if digest.LeadingZeroBits(b.Hash) >= int(difficulty) {
			return b
		}
		b.Nonce++
	}
}
