// Package wallet manages a key pair and the transactions it signs.
package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet holds the private key of an account.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	accountID  database.AccountID
}

// New generates a wallet with a new private key.
func New() (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return FromPrivateKey(privateKey), nil
}

// FromPrivateKey constructs a wallet for an existing private key.
func FromPrivateKey(privateKey *ecdsa.PrivateKey) *Wallet {
	return &Wallet{
		privateKey: privateKey,
		accountID:  database.PublicKeyToAccountID(privateKey.PublicKey),
	}
}

// Load reads the hex encoded private key stored in the file.
func Load(path string) (*Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	if err != nil {
		return nil, fmt.Errorf("loading key %s: %w", path, err)
	}

	return FromPrivateKey(privateKey), nil
}

// Save writes the private key hex encoded to the file.
func (w *Wallet) Save(path string) error {
	if err := crypto.SaveECDSA(path, w.privateKey); err != nil {
		return fmt.Errorf("saving key %s: %w", path, err)
	}

	return nil
}

// AccountID returns the account the wallet signs for.
func (w *Wallet) AccountID() database.AccountID {
	return w.accountID
}

// Sign signs the value with the wallet's private key.
func (w *Wallet) Sign(value any) (string, error) {
	return signature.Sign(value, w.privateKey)
}

// Balance returns the wallet's balance according to the chain.
func (w *Wallet) Balance(chain []database.Block, params database.Params) uint64 {
	return database.CalculateBalance(chain, w.accountID, params)
}

// CreateTransaction constructs a signed transaction spending from the
// wallet's balance according to the chain.
func (w *Wallet) CreateTransaction(to database.AccountID, amount uint64, chain []database.Block, params database.Params) (database.Transaction, error) {
	balance := w.Balance(chain, params)

	if amount > balance {
		return database.Transaction{}, fmt.Errorf("%w: bal %d, needed %d", database.ErrAmountExceedsBalance, balance, amount)
	}

	return database.NewTransaction(w, balance, to, amount)
}
