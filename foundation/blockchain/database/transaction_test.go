package database_test

import (
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

func Test_Transaction(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	sender := signer{pk: pk}

	t.Log("Given the need to create and validate transactions.")
	{
		t.Logf("\tTest 0:\tWhen creating a transaction.")
		{
			tx, err := database.NewTransaction(sender, 1000, toID, 65)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
			}
			t.Logf("\t%s\tShould be able to create a transaction.", success)

			if tx.Input.Address != "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4" {
				t.Fatalf("\t%s\tShould use the signer as the input address: %s", failed, tx.Input.Address)
			}
			t.Logf("\t%s\tShould use the signer as the input address.", success)

			if tx.OutputMap[toID] != 65 || tx.OutputMap[sender.AccountID()] != 935 {
				t.Fatalf("\t%s\tShould output the amount and the change: %v", failed, tx.OutputMap)
			}
			t.Logf("\t%s\tShould output the amount and the change.", success)

			if tx.Input.Amount != 1000 || tx.Kind != database.KindOrdinary || tx.IsReward() || tx.ID == "" {
				t.Fatalf("\t%s\tShould fill in the input: %+v", failed, tx)
			}
			t.Logf("\t%s\tShould fill in the input.", success)

			if err := signature.Verify(tx.OutputMap, tx.Input.Signature, string(sender.AccountID())); err != nil {
				t.Fatalf("\t%s\tShould sign the output map: %s", failed, err)
			}
			t.Logf("\t%s\tShould sign the output map.", success)

			if err := database.ValidTransaction(tx); err != nil {
				t.Fatalf("\t%s\tShould be a valid transaction: %s", failed, err)
			}
			t.Logf("\t%s\tShould be a valid transaction.", success)
		}

		t.Logf("\tTest 1:\tWhen creating a transaction that can't be made.")
		{
			if _, err := database.NewTransaction(sender, 1000, toID, 1001); !errors.Is(err, database.ErrAmountExceedsBalance) {
				t.Fatalf("\t%s\tShould reject an amount above the balance: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject an amount above the balance.", success)

			if _, err := database.NewTransaction(sender, 1000, sender.AccountID(), 10); err == nil {
				t.Fatalf("\t%s\tShould reject sending money to yourself.", failed)
			}
			t.Logf("\t%s\tShould reject sending money to yourself.", success)

			if _, err := database.NewTransaction(sender, 1000, "bill", 10); err == nil {
				t.Fatalf("\t%s\tShould reject a malformed recipient.", failed)
			}
			t.Logf("\t%s\tShould reject a malformed recipient.", success)
		}

		t.Logf("\tTest 2:\tWhen a transaction is tampered with.")
		{
			tx, err := database.NewTransaction(sender, 1000, toID, 50)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
			}

			inflated := tx
			inflated.OutputMap = maps.Clone(tx.OutputMap)
			inflated.OutputMap[toID] = 999999
			if err := inflated.Validate(); !errors.Is(err, database.ErrMalformedOutputMap) {
				t.Fatalf("\t%s\tShould reject outputs that don't sum to the input: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject outputs that don't sum to the input.", success)

			swapped := tx
			swapped.OutputMap = map[database.AccountID]uint64{
				toID:               950,
				sender.AccountID(): 50,
			}
			if err := swapped.Validate(); !errors.Is(err, database.ErrInvalidSignature) {
				t.Fatalf("\t%s\tShould reject outputs that were not signed: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject outputs that were not signed.", success)

			forged := tx
			forged.Input.Signature = "0x" + "ab"
			if err := forged.Validate(); !errors.Is(err, database.ErrInvalidSignature) {
				t.Fatalf("\t%s\tShould reject a forged signature: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a forged signature.", success)

			impostor := tx
			impostor.Input.Address = newSigner(t).AccountID()
			if err := impostor.Validate(); !errors.Is(err, database.ErrInvalidSignature) {
				t.Fatalf("\t%s\tShould reject a signature from someone else: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a signature from someone else.", success)

			split := splitChange(t, sender, 1000, toID, 10)
			if err := split.Validate(); !errors.Is(err, database.ErrMalformedOutputMap) {
				t.Fatalf("\t%s\tShould reject two outputs naming the sender: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject two outputs naming the sender.", success)

			bare := database.AccountID(strings.TrimPrefix(string(toID), "0x"))
			outputMap := map[database.AccountID]uint64{toID: 5, bare: 5, sender.AccountID(): 990}
			twice := signedOutputs(t, sender, 1000, outputMap)
			if err := twice.Validate(); !errors.Is(err, database.ErrMalformedOutputMap) {
				t.Fatalf("\t%s\tShould reject two outputs naming the recipient: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject two outputs naming the recipient.", success)
		}

		t.Logf("\tTest 3:\tWhen updating a pending transaction.")
		{
			tx, err := database.NewTransaction(sender, 1000, toID, 50)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to create a transaction: %s", failed, err)
			}

			next := newSigner(t).AccountID()
			updated, err := tx.Update(sender, next, 100)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to update the transaction: %s", failed, err)
			}
			t.Logf("\t%s\tShould be able to update the transaction.", success)

			if updated.ID != tx.ID || updated.OutputMap[next] != 100 || updated.OutputMap[sender.AccountID()] != 850 {
				t.Fatalf("\t%s\tShould move the amount out of the change: %v", failed, updated.OutputMap)
			}
			t.Logf("\t%s\tShould move the amount out of the change.", success)

			if len(tx.OutputMap) != 2 || tx.OutputMap[sender.AccountID()] != 950 {
				t.Fatalf("\t%s\tShould not change the original transaction: %v", failed, tx.OutputMap)
			}
			t.Logf("\t%s\tShould not change the original transaction.", success)

			if err := updated.Validate(); err != nil {
				t.Fatalf("\t%s\tShould sign the updated outputs: %s", failed, err)
			}
			t.Logf("\t%s\tShould sign the updated outputs.", success)

			again, err := updated.Update(sender, next, 25)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to update the same recipient: %s", failed, err)
			}
			if again.OutputMap[next] != 125 || again.OutputMap[sender.AccountID()] != 825 {
				t.Fatalf("\t%s\tShould add to an existing output: %v", failed, again.OutputMap)
			}
			t.Logf("\t%s\tShould add to an existing output.", success)

			if _, err := again.Update(sender, toID, 826); !errors.Is(err, database.ErrAmountExceedsBalance) {
				t.Fatalf("\t%s\tShould reject an amount above the change: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject an amount above the change.", success)

			if _, err := again.Update(newSigner(t), toID, 1); err == nil {
				t.Fatalf("\t%s\tShould reject an update by someone else.", failed)
			}
			t.Logf("\t%s\tShould reject an update by someone else.", success)
		}
	}
}

func Test_RewardTransaction(t *testing.T) {
	t.Log("Given the need to reward a miner.")
	{
		t.Logf("\tTest 0:\tWhen creating a reward.")
		{
			tx := database.NewRewardTransaction(minerID, 50)

			if !tx.IsReward() || tx.Input.Address != database.RewardAccountID || tx.Input.Signature != "" {
				t.Fatalf("\t%s\tShould be an unsigned reward: %+v", failed, tx)
			}
			t.Logf("\t%s\tShould be an unsigned reward.", success)

			if len(tx.OutputMap) != 1 || tx.OutputMap[minerID] != 50 {
				t.Fatalf("\t%s\tShould pay the miner: %v", failed, tx.OutputMap)
			}
			t.Logf("\t%s\tShould pay the miner.", success)

			if err := tx.Validate(); err != nil {
				t.Fatalf("\t%s\tShould be a valid reward: %s", failed, err)
			}
			t.Logf("\t%s\tShould be a valid reward.", success)
		}

		t.Logf("\tTest 1:\tWhen the kind is not declared.")
		{
			tx := database.NewRewardTransaction(minerID, 50)
			tx.Kind = ""

			if !tx.IsReward() {
				t.Fatalf("\t%s\tShould infer a reward from the sentinel address.", failed)
			}
			if err := tx.Validate(); err != nil {
				t.Fatalf("\t%s\tShould be a valid reward: %s", failed, err)
			}
			t.Logf("\t%s\tShould infer a reward from the sentinel address.", success)
		}

		t.Logf("\tTest 2:\tWhen the reward is malformed.")
		{
			tx := database.NewRewardTransaction(minerID, 50)
			tx.OutputMap[toID] = 50
			if err := tx.Validate(); !errors.Is(err, database.ErrMalformedOutputMap) {
				t.Fatalf("\t%s\tShould reject a reward with two outputs: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a reward with two outputs.", success)

			tx = database.NewRewardTransaction(minerID, 50)
			tx.Input.Address = toID
			if err := tx.Validate(); !errors.Is(err, database.ErrMalformedTransaction) {
				t.Fatalf("\t%s\tShould reject a reward from a real account: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject a reward from a real account.", success)

			tx = database.NewRewardTransaction(minerID, 50)
			tx.Kind = database.KindOrdinary
			if err := tx.Validate(); !errors.Is(err, database.ErrMalformedTransaction) {
				t.Fatalf("\t%s\tShould reject an ordinary kind from the reward address: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject an ordinary kind from the reward address.", success)

			tx = database.NewRewardTransaction(minerID, 50)
			tx.Kind = "gift"
			if err := tx.Validate(); !errors.Is(err, database.ErrMalformedTransaction) {
				t.Fatalf("\t%s\tShould reject an unknown kind: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject an unknown kind.", success)
		}
	}
}
