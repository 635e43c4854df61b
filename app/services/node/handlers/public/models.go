package public

import "github.com/ardanlabs/cryptochain/foundation/blockchain/database"

type mineRequest struct {
	Data any `json:"data" validate:"required"`
}

type transactRequest struct {
	Recipient string `json:"recipient" validate:"required,account"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

type walletInfo struct {
	Address database.AccountID `json:"address"`
	Balance uint64             `json:"balance"`
}
