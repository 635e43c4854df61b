package state

import "github.com/ardanlabs/cryptochain/foundation/blockchain/database"

// Result reports whether a chain or a transaction offered to the node was
// accepted, and why not when it wasn't.
type Result struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
	Err      error  `json:"-"`
}

func accepted() Result {
	return Result{Accepted: true}
}

func rejected(err error) Result {
	return Result{
		Reason:  database.Reason(err),
		Message: err.Error(),
		Err:     err,
	}
}
