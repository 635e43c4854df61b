package database

import "time"

// Default economic settings of the ledger.
const (
	StartingBalance uint64        = 1000
	MiningReward    uint64        = 50
	MineRate        time.Duration = time.Second
)

// Params are the economic constants shared by mining and validation. Every
// node on the network must run with the same values or they will reject each
// other's chains.
type Params struct {
	StartingBalance uint64
	MiningReward    uint64
	MineRate        time.Duration
}

// DefaultParams returns the default ledger settings.
func DefaultParams() Params {
	return Params{
		StartingBalance: StartingBalance,
		MiningReward:    MiningReward,
		MineRate:        MineRate,
	}
}
