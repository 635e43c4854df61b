// This program is a command line wallet for the ledger. It signs
// transactions locally and submits them to a node.
package main

import "github.com/ardanlabs/cryptochain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
