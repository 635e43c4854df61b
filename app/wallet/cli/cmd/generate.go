package cmd

import (
	"os"
	"path/filepath"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	path := getPrivateKeyPath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	w, err := wallet.New()
	if err != nil {
		return err
	}

	if err := w.Save(path); err != nil {
		return err
	}

	pterm.Success.Printfln("key stored in %s for account %s", path, w.AccountID())

	return nil
}
