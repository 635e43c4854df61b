package wallet_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const toID = database.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")

// =============================================================================

func Test_Wallet(t *testing.T) {
	t.Log("Given the need to keep a key pair.")
	{
		t.Logf("\tTest 0:\tWhen saving and loading the key.")
		{
			w, err := wallet.New()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a wallet: %s", failed, err)
			}
			t.Logf("\t%s\tShould be able to create a wallet.", success)

			if !w.AccountID().IsAccountID() {
				t.Fatalf("\t%s\tShould have a valid account: %s", failed, w.AccountID())
			}
			t.Logf("\t%s\tShould have a valid account.", success)

			path := filepath.Join(t.TempDir(), "miner.ecdsa")
			if err := w.Save(path); err != nil {
				t.Fatalf("\t%s\tShould be able to save the key: %s", failed, err)
			}

			loaded, err := wallet.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to load the key: %s", failed, err)
			}

			if loaded.AccountID() != w.AccountID() {
				t.Fatalf("\t%s\tShould load the same account: got %s, exp %s", failed, loaded.AccountID(), w.AccountID())
			}
			t.Logf("\t%s\tShould load the same account.", success)
		}

		t.Logf("\tTest 1:\tWhen signing data.")
		{
			w, err := wallet.New()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a wallet: %s", failed, err)
			}

			data := map[string]string{"foo": "bar"}
			sig, err := w.Sign(data)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to sign data: %s", failed, err)
			}

			if err := signature.Verify(data, sig, string(w.AccountID())); err != nil {
				t.Fatalf("\t%s\tShould verify a valid signature: %s", failed, err)
			}
			t.Logf("\t%s\tShould verify a valid signature.", success)

			other, err := wallet.New()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a wallet: %s", failed, err)
			}

			sig, err = other.Sign(data)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to sign data: %s", failed, err)
			}

			if err := signature.Verify(data, sig, string(w.AccountID())); err == nil {
				t.Fatalf("\t%s\tShould not verify a signature from another wallet.", failed)
			}
			t.Logf("\t%s\tShould not verify a signature from another wallet.", success)
		}
	}
}

func Test_CreateTransaction(t *testing.T) {
	params := database.DefaultParams()

	t.Log("Given the need to spend from a wallet.")
	{
		t.Logf("\tTest 0:\tWhen the amount exceeds the balance.")
		{
			w, err := wallet.New()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a wallet: %s", failed, err)
			}

			chain := []database.Block{database.Genesis()}
			if _, err := w.CreateTransaction(toID, 999999, chain, params); !errors.Is(err, database.ErrAmountExceedsBalance) {
				t.Fatalf("\t%s\tShould reject the amount: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the amount.", success)
		}

		t.Logf("\tTest 1:\tWhen the amount is valid.")
		{
			w, err := wallet.New()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a wallet: %s", failed, err)
			}

			chain := []database.Block{database.Genesis()}
			tx, err := w.CreateTransaction(toID, 50, chain, params)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
			}
			t.Logf("\t%s\tShould be able to create a transaction.", success)

			if tx.Input.Address != w.AccountID() || tx.OutputMap[toID] != 50 {
				t.Fatalf("\t%s\tShould match the sender and recipient: %+v", failed, tx)
			}
			t.Logf("\t%s\tShould match the sender and recipient.", success)

			if err := tx.Validate(); err != nil {
				t.Fatalf("\t%s\tShould be a valid transaction: %s", failed, err)
			}
			t.Logf("\t%s\tShould be a valid transaction.", success)
		}

		t.Logf("\tTest 2:\tWhen the balance comes from the chain.")
		{
			sender, err := wallet.New()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a wallet: %s", failed, err)
			}
			receiver, err := wallet.New()
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a wallet: %s", failed, err)
			}

			db := database.New(params, nil)

			tx, err := sender.CreateTransaction(receiver.AccountID(), 300, db.Chain(), params)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
			}

			data := []database.Transaction{tx, database.NewRewardTransaction(receiver.AccountID(), params.MiningReward)}
			if _, err := db.AddBlock(context.Background(), data); err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %s", failed, err)
			}

			if got := receiver.Balance(db.Chain(), params); got != 1350 {
				t.Fatalf("\t%s\tShould credit the receiver: got %d", failed, got)
			}
			t.Logf("\t%s\tShould credit the receiver.", success)

			tx, err = sender.CreateTransaction(toID, 700, db.Chain(), params)
			if err != nil {
				t.Fatalf("\t%s\tShould spend the remaining change: %s", failed, err)
			}
			if tx.Input.Amount != 700 {
				t.Fatalf("\t%s\tShould claim the change as the balance: got %d", failed, tx.Input.Amount)
			}
			t.Logf("\t%s\tShould claim the change as the balance.", success)

			if _, err := sender.CreateTransaction(toID, 701, db.Chain(), params); !errors.Is(err, database.ErrAmountExceedsBalance) {
				t.Fatalf("\t%s\tShould not spend more than the change: %v", failed, err)
			}
			t.Logf("\t%s\tShould not spend more than the change.", success)
		}
	}
}
