// Package digest provides the deterministic hashing used to seal blocks and
// to check the proof of work puzzle.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math/bits"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ZeroHash represents a hash code of zeros.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// hashLength is the number of bytes produced by the hash function.
const hashLength = sha256.Size

// =============================================================================

// Hash returns a unique string for the set of values. The result does not
// depend on the order of the values or on the order of keys inside any
// composite value. An empty string is returned when a value can't be encoded,
// which never satisfies a proof of work check. Use Sum to learn why.
func Hash(values ...any) string {
	hash, err := Sum(values...)
	if err != nil {
		return ""
	}

	return hash
}

// Sum is Hash reporting the value that could not be encoded.
func Sum(values ...any) (string, error) {
	parts := make([]string, len(values))
	for i, value := range values {
		data, err := Canonical(value)
		if err != nil {
			return "", fmt.Errorf("value[%d]: %w", i, err)
		}
		parts[i] = string(data)
	}

	sort.Strings(parts)

	hash := sha256.Sum256([]byte(strings.Join(parts, " ")))
	return hexutil.Encode(hash[:]), nil
}

// Canonical returns the canonical JSON encoding of the value. Typed values and
// their generically decoded JSON form produce the same bytes since object keys
// are sorted and numbers keep their literal form.
func Canonical(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}

// LeadingZeroBits returns the number of leading zero bits in the binary
// expansion of the hex encoded hash. A value that is not a well formed hash
// reports zero bits.
func LeadingZeroBits(hash string) int {
	data, err := hexutil.Decode(hash)
	if err != nil || len(data) != hashLength {
		return 0
	}

	var zeros int
	for _, b := range data {
		if b == 0 {
			zeros += 8
			continue
		}

		zeros += bits.LeadingZeros8(b)
		break
	}

	return zeros
}
