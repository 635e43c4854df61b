package cmd

import (
	"fmt"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	to              string
	amount          uint64
	startingBalance uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value to an account",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account to send the value to.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Value to send.")
	sendCmd.Flags().Uint64Var(&startingBalance, "starting-balance", database.StartingBalance, "Starting balance configured on the node.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) error {
	w, err := wallet.Load(getPrivateKeyPath())
	if err != nil {
		return err
	}

	toID, err := database.ToAccountID(to)
	if err != nil {
		return err
	}

	var chain []database.Block
	if err := get(fmt.Sprintf("%s/v1/blocks", url), &chain); err != nil {
		return err
	}

	var pool map[string]database.Transaction
	if err := get(fmt.Sprintf("%s/v1/transaction-pool", url), &pool); err != nil {
		return err
	}

	params := database.DefaultParams()
	params.StartingBalance = startingBalance

	tx, err := buildTransaction(w, toID, amount, chain, pool, params)
	if err != nil {
		return err
	}

	if err := post(fmt.Sprintf("%s/v1/tx/submit", url), tx, nil); err != nil {
		return err
	}

	pterm.Success.Printfln("transaction %s sent %d to %s", tx.ID, amount, toID)

	return nil
}

// buildTransaction updates the wallet's pending transaction when the pool
// holds one, otherwise it creates a new transaction from the chain balance.
func buildTransaction(w *wallet.Wallet, to database.AccountID, amount uint64, chain []database.Block, pool map[string]database.Transaction, params database.Params) (database.Transaction, error) {
	for _, tx := range pool {
		if !tx.IsReward() && tx.Input.Address.Equal(w.AccountID()) {
			return tx.Update(w, to, amount)
		}
	}

	return w.CreateTransaction(to, amount, chain, params)
}
