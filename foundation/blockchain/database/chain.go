package database

import "fmt"

// ValidateChain checks the chain starts with the genesis block and that every
// following block is linked to, sealed for, and within one difficulty step of
// its parent. The first violation found is returned.
func ValidateChain(chain []Block) error {
	if len(chain) == 0 || !chain[0].IsGenesis() {
		return ErrInvalidGenesis
	}

	for i := 1; i < len(chain); i++ {
		if err := chain[i].ValidateBlock(chain[i-1]); err != nil {
			return fmt.Errorf("block[%d]: %w", i, err)
		}
	}

	return nil
}

// IsValidChain is the boolean form of ValidateChain.
func IsValidChain(chain []Block) bool {
	return ValidateChain(chain) == nil
}
