package database

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/digest"
)

// Values of the hard coded genesis block.
const (
	genesisTimestamp  int64  = 1
	genesisPrevHash   string = "-----"
	genesisHash       string = "hash-one"
	genesisDifficulty uint   = 3
)

// =============================================================================

// Block represents a sealed unit of data on the chain.
type Block struct {
	Timestamp  int64  `json:"timestamp"`    // Unix milliseconds at the time the block was sealed.
	PrevHash   string `json:"previousHash"` // Hash of the previous block in the chain.
	Hash       string `json:"hash"`         // Digest of the other five fields.
	Nonce      uint64 `json:"nonce"`        // Value identified to solve the hash solution.
	Difficulty uint   `json:"difficulty"`   // Number of leading zero bits needed in the hash.
	Data       any    `json:"data"`         // Transactions or an arbitrary payload.
}

// Genesis returns the first block of every chain. It is never mined.
func Genesis() Block {
	return Block{
		Timestamp:  genesisTimestamp,
		PrevHash:   genesisPrevHash,
		Hash:       genesisHash,
		Nonce:      0,
		Difficulty: genesisDifficulty,
		Data:       []any{},
	}
}

// IsGenesis reports whether the block is exactly the genesis block.
func (b Block) IsGenesis() bool {
	g := Genesis()

	if b.Timestamp != g.Timestamp || b.PrevHash != g.PrevHash || b.Hash != g.Hash ||
		b.Nonce != g.Nonce || b.Difficulty != g.Difficulty {
		return false
	}

	// Data is compared in canonical form since a genesis block received from
	// a peer carries generically decoded JSON.
	got, err := digest.Canonical(b.Data)
	if err != nil {
		return false
	}
	exp, _ := digest.Canonical(g.Data)

	return bytes.Equal(got, exp)
}

// ComputeHash returns the digest of the block fields other than the hash.
// An empty string is returned when the data can't be encoded.
func (b Block) ComputeHash() string {
	hash, _ := b.computeHash()
	return hash
}

// computeHash is ComputeHash reporting why the data can't be encoded.
func (b Block) computeHash() (string, error) {
	return digest.Sum(b.Timestamp, b.PrevHash, b.Nonce, b.Data, b.Difficulty)
}

// ValidateBlock takes a block and validates it against its parent.
func (b Block) ValidateBlock(prevBlock Block) error {
	if b.PrevHash != prevBlock.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrBrokenHashLink, b.PrevHash, prevBlock.Hash)
	}

	hash, err := b.computeHash()
	if err != nil {
		return fmt.Errorf("%w: can't hash block: %s", ErrMalformedBlockData, err)
	}

	if hash != b.Hash {
		return fmt.Errorf("%w: got %s, exp %s", ErrTamperedBlock, b.Hash, hash)
	}

	if !isHashSolved(b.Difficulty, b.Hash) {
		return fmt.Errorf("%w: hash %s, difficulty %d", ErrUnsolvedBlock, b.Hash, b.Difficulty)
	}

	diff := b.Difficulty - prevBlock.Difficulty
	if prevBlock.Difficulty > b.Difficulty {
		diff = prevBlock.Difficulty - b.Difficulty
	}
	if diff > 1 {
		return fmt.Errorf("%w: parent %d, block %d", ErrDifficultyJump, prevBlock.Difficulty, b.Difficulty)
	}

	return nil
}

// =============================================================================

// AdjustDifficulty returns the difficulty for a block sealed at the specified
// unix millisecond timestamp. Blocks arriving faster than the mine rate make
// the puzzle harder, slower blocks make it easier down to a minimum of one.
func AdjustDifficulty(prevBlock Block, timestamp int64, mineRate time.Duration) uint {
	if timestamp-prevBlock.Timestamp < mineRate.Milliseconds() {
		return prevBlock.Difficulty + 1
	}

	if prevBlock.Difficulty <= 1 {
		return 1
	}

	return prevBlock.Difficulty - 1
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlock Block
	Data      any
	MineRate  time.Duration
	EvHandler func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle. The timestamp and the difficulty are
// re-sampled on every attempt. Only a cancelled context stops the search.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ev("database: POW: MINING: started: prevBlk[%s]", args.PrevBlock.Hash)
	defer ev("database: POW: MINING: completed")

	// No nonce can solve a puzzle over data that can't be hashed.
	if _, err := digest.Canonical(args.Data); err != nil {
		ev("database: POW: MINING: ERROR: can't hash data: %s", err)
		return Block{}, fmt.Errorf("%w: can't hash data: %s", ErrMalformedBlockData, err)
	}

	var nonce uint64
	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled by another node's chain being accepted.
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED")
			return Block{}, ctx.Err()
		}

		nonce++
		timestamp := time.Now().UnixMilli()

		nb := Block{
			Timestamp:  timestamp,
			PrevHash:   args.PrevBlock.Hash,
			Nonce:      nonce,
			Difficulty: AdjustDifficulty(args.PrevBlock, timestamp, args.MineRate),
			Data:       args.Data,
		}

		// Hash the block and check if we have solved the puzzle.
		nb.Hash = nb.ComputeHash()
		if !isHashSolved(nb.Difficulty, nb.Hash) {
			continue
		}

		ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: difficulty[%d]", nb.PrevHash, nb.Hash, nb.Difficulty)
		ev("database: POW: MINING: attempts[%d]", attempts)

		return nb, nil
	}
}

// isHashSolved checks the hash to make sure it complies with the POW rules.
// The binary form of the hash needs a difficulty number of leading 0 bits.
func isHashSolved(difficulty uint, hash string) bool {
	if difficulty == 0 {
		return false
	}

	return uint(digest.LeadingZeroBits(hash)) >= difficulty
}
