package database

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RewardAccountID is the reserved input address carried by mining reward
// transactions. It is not a real wallet and can never sign anything.
const RewardAccountID AccountID = "*authorized-reward*"

// AccountID represents an account id that is used to sign transactions and is
// associated with transactions on the blockchain.
type AccountID string

// ToAccountID converts a hex-encoded string to an account and validates the
// hex-encoded string is formatted correctly.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", errors.New("invalid account format")
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).String())
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded account.
func (a AccountID) IsAccountID() bool {
	return common.IsHexAddress(string(a))
}

// IsReward reports whether the account is the reserved reward sentinel.
func (a AccountID) IsReward() bool {
	return a == RewardAccountID
}

// Equal compares two accounts ignoring the checksum casing of the hex digits
// and the optional 0x prefix.
func (a AccountID) Equal(b AccountID) bool {
	return normalize(a) == normalize(b)
}

// normalize returns the account in a form usable as a map key. Every spelling
// of the same hex address maps to the same key.
func normalize(a AccountID) AccountID {
	if !a.IsAccountID() {
		return AccountID(strings.ToLower(string(a)))
	}

	return AccountID(strings.ToLower(common.HexToAddress(string(a)).Hex()))
}
