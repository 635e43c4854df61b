// Package signature provides helper functions for signing transaction output
// maps and recovering the account that produced a signature.
package signature

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/digest"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ledgerID is an arbitrary number added to the recovery id so signatures
// produced here are recognizable. Ethereum and Bitcoin use the value of 27.
const ledgerID = 29

// ErrMismatch is returned when a valid signature recovers to a different
// account than the one claimed.
var ErrMismatch = errors.New("signature does not match address")

// =============================================================================

// Sign uses the specified private key to sign the value. The signature is
// returned hex encoded in the [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) (string, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return "", err
	}

	// Check the public key extracted from the data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return "", errors.New("invalid signature")
	}

	sig[crypto.RecoveryIDOffset] += ledgerID

	return hexutil.Encode(sig), nil
}

// FromAddress extracts the address for the account that signed the value.
func FromAddress(value any, sigStr string) (string, error) {

	// NOTE: If the same exact data for the given signature is not provided
	// we will get the wrong from address. The public key is extracted from
	// the data and the signature, there is no copy of it on the node.

	sig, err := toSignatureBytes(sigStr)
	if err != nil {
		return "", err
	}

	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// Verify checks the signature is well formed and was produced over the value
// by the private key behind the specified address.
func Verify(value any, sigStr string, address string) error {
	from, err := FromAddress(value, sigStr)
	if err != nil {
		return err
	}

	if !strings.EqualFold(from, address) {
		return fmt.Errorf("%w: recovered %s, claimed %s", ErrMismatch, from, address)
	}

	return nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents the canonical form of the
// value with the ledger stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {
	v, err := digest.Canonical(value)
	if err != nil {
		return nil, err
	}

	// Hash the data into a 32 byte array. This provides a data length
	// consistency with all data.
	txHash := crypto.Keccak256(v)

	// This stamp is used so signatures produced here are always unique to
	// this ledger.
	stamp := []byte("\x19Cryptochain Signed Message:\n32")

	return crypto.Keccak256(stamp, txHash), nil
}

// toSignatureBytes decodes the hex signature and validates its values,
// removing the ledger id from the recovery id.
func toSignatureBytes(sigStr string) ([]byte, error) {
	sig, err := hexutil.Decode(sigStr)
	if err != nil {
		return nil, fmt.Errorf("decoding signature: %w", err)
	}

	if len(sig) != crypto.SignatureLength {
		return nil, fmt.Errorf("invalid signature length %d", len(sig))
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset] - ledgerID
	if v != 0 && v != 1 {
		return nil, errors.New("invalid recovery id")
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return nil, errors.New("invalid signature values")
	}

	out := make([]byte, crypto.SignatureLength)
	copy(out, sig)
	out[crypto.RecoveryIDOffset] = v

	return out, nil
}
