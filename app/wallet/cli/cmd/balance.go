package cmd

import (
	"fmt"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	w, err := wallet.Load(getPrivateKeyPath())
	if err != nil {
		return err
	}

	var info struct {
		Address database.AccountID `json:"address"`
		Balance uint64             `json:"balance"`
	}
	if err := get(fmt.Sprintf("%s/v1/wallet/%s", url, w.AccountID()), &info); err != nil {
		return err
	}

	pterm.DefaultBox.
		WithTitle(pterm.LightCyan("|BALANCE|")).
		WithTitleTopCenter().
		WithLeftPadding(4).
		WithRightPadding(4).
		Println(pterm.Sprintf("%s\n%d", info.Address, info.Balance))

	return nil
}
