package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain held by the node.",
	RunE:  chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
}

func chainRun(cmd *cobra.Command, args []string) error {
	var chain []database.Block
	if err := get(fmt.Sprintf("%s/v1/blocks", url), &chain); err != nil {
		return err
	}

	return pterm.DefaultTable.WithHasHeader().WithData(chainTable(chain)).Render()
}

// chainTable lays the chain out one block per row.
func chainTable(chain []database.Block) pterm.TableData {
	data := pterm.TableData{
		{"#", "Time", "Hash", "Difficulty", "Nonce", "Txs"},
	}

	for i, block := range chain {
		txs := "-"
		if decoded, err := database.DecodeTransactions(block.Data); err == nil {
			txs = strconv.Itoa(len(decoded))
		}

		data = append(data, []string{
			strconv.Itoa(i),
			time.UnixMilli(block.Timestamp).UTC().Format(time.RFC3339),
			shorten(block.Hash),
			fmt.Sprint(block.Difficulty),
			fmt.Sprint(block.Nonce),
			txs,
		})
	}

	return data
}

func shorten(hash string) string {
	if len(hash) <= 18 {
		return hash
	}

	return hash[:10] + ".." + hash[len(hash)-6:]
}
