package database

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Kind discriminates ordinary transfers from mining rewards.
type Kind string

// Set of transaction kinds.
const (
	KindOrdinary Kind = "ordinary"
	KindReward   Kind = "reward"
)

// Signer represents the behavior required to sign a transaction. A wallet
// implements this interface.
type Signer interface {
	AccountID() AccountID
	Sign(value any) (string, error)
}

// =============================================================================

// Input describes who is spending and what balance they are spending from.
type Input struct {
	Timestamp int64     `json:"timestamp"`           // Unix milliseconds when the input was signed.
	Amount    uint64    `json:"amount"`              // The sender's balance at the time of signing.
	Address   AccountID `json:"address"`             // The sender, or the reward sentinel.
	Signature string    `json:"signature,omitempty"` // Signature over the output map.
}

// Transaction is a signed value transfer. The output map includes the change
// owed back to the sender, so the outputs always sum to the input amount.
type Transaction struct {
	ID        string               `json:"id"`
	OutputMap map[AccountID]uint64 `json:"outputMap"`
	Input     Input                `json:"input"`
	Kind      Kind                 `json:"kind,omitempty"`
}

// NewTransaction constructs a transaction moving amount from the signer to
// the specified account, returning the rest of the balance as change.
func NewTransaction(signer Signer, balance uint64, to AccountID, amount uint64) (Transaction, error) {
	from := signer.AccountID()

	if !to.IsAccountID() {
		return Transaction{}, fmt.Errorf("to account is not properly formatted")
	}

	if from.Equal(to) {
		return Transaction{}, fmt.Errorf("transaction invalid, sending money to yourself, from %s, to %s", from, to)
	}

	if amount > balance {
		return Transaction{}, fmt.Errorf("%w: bal %d, needed %d", ErrAmountExceedsBalance, balance, amount)
	}

	outputMap := map[AccountID]uint64{
		to:   amount,
		from: balance - amount,
	}

	input, err := newInput(signer, balance, outputMap)
	if err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:        uuid.NewString(),
		OutputMap: outputMap,
		Input:     input,
		Kind:      KindOrdinary,
	}

	return tx, nil
}

// NewRewardTransaction constructs the reward paid to the miner of a block.
func NewRewardTransaction(miner AccountID, reward uint64) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		OutputMap: map[AccountID]uint64{miner: reward},
		Input: Input{
			Timestamp: time.Now().UnixMilli(),
			Address:   RewardAccountID,
		},
		Kind: KindReward,
	}
}

// Update returns a copy of the transaction with another amount moved from the
// sender's change to the specified account, signed again by the sender. The
// id is kept so the pending transaction is replaced in the pool.
func (tx Transaction) Update(signer Signer, to AccountID, amount uint64) (Transaction, error) {
	from := signer.AccountID()

	if !from.Equal(tx.Input.Address) {
		return Transaction{}, fmt.Errorf("signer %s is not the sender %s", from, tx.Input.Address)
	}

	if !to.IsAccountID() {
		return Transaction{}, fmt.Errorf("to account is not properly formatted")
	}

	if from.Equal(to) {
		return Transaction{}, fmt.Errorf("transaction invalid, sending money to yourself, from %s, to %s", from, to)
	}

	change := tx.change()
	if amount > change {
		return Transaction{}, fmt.Errorf("%w: change %d, needed %d", ErrAmountExceedsBalance, change, amount)
	}

	outputMap := make(map[AccountID]uint64, len(tx.OutputMap)+1)
	for accountID, value := range tx.OutputMap {
		switch {
		case accountID.Equal(from):
			outputMap[accountID] = value - amount
		case accountID.Equal(to):
			outputMap[accountID] = value + amount
		default:
			outputMap[accountID] = value
		}
	}
	if _, exists := tx.output(to); !exists {
		outputMap[to] = amount
	}

	input, err := newInput(signer, tx.Input.Amount, outputMap)
	if err != nil {
		return Transaction{}, err
	}

	tx.OutputMap = outputMap
	tx.Input = input

	return tx, nil
}

// IsReward reports whether this is a mining reward. An undeclared kind is
// inferred from the sentinel input address.
func (tx Transaction) IsReward() bool {
	if tx.Kind == "" {
		return tx.Input.Address.IsReward()
	}

	return tx.Kind == KindReward
}

// Validate checks the structure of the transaction and, for ordinary
// transactions, that the outputs sum to the input amount and the signature
// was produced by the input address over the output map.
func (tx Transaction) Validate() error {
	if tx.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedTransaction)
	}

	switch tx.Kind {
	case "", KindOrdinary, KindReward:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedTransaction, tx.Kind)
	}

	if tx.IsReward() {
		return tx.validateReward()
	}

	if tx.Input.Address.IsReward() {
		return fmt.Errorf("%w: ordinary transaction from the reward address", ErrMalformedTransaction)
	}

	if !tx.Input.Address.IsAccountID() {
		return fmt.Errorf("%w: invalid input address %q", ErrMalformedTransaction, tx.Input.Address)
	}

	if len(tx.OutputMap) == 0 {
		return fmt.Errorf("%w: no outputs", ErrMalformedOutputMap)
	}

	if err := checkOutputAccounts(tx.OutputMap); err != nil {
		return err
	}

	var total uint64
	for _, value := range tx.OutputMap {
		var carry uint64
		total, carry = bits.Add64(total, value, 0)
		if carry != 0 {
			return fmt.Errorf("%w: outputs overflow", ErrMalformedOutputMap)
		}
	}

	if total != tx.Input.Amount {
		return fmt.Errorf("%w: outputs %d, input amount %d", ErrMalformedOutputMap, total, tx.Input.Amount)
	}

	if err := signature.Verify(tx.OutputMap, tx.Input.Signature, string(tx.Input.Address)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	if tx.IsReward() {
		return fmt.Sprintf("%s:reward", tx.ID)
	}

	return fmt.Sprintf("%s:%s", tx.ID, tx.Input.Address)
}

// =============================================================================

// validateReward checks the structure of a reward transaction.
func (tx Transaction) validateReward() error {
	if !tx.Input.Address.IsReward() {
		return fmt.Errorf("%w: reward not from the reward address", ErrMalformedTransaction)
	}

	if len(tx.OutputMap) != 1 {
		return fmt.Errorf("%w: reward has %d outputs", ErrMalformedOutputMap, len(tx.OutputMap))
	}

	return checkOutputAccounts(tx.OutputMap)
}

// change returns the amount the sender keeps.
func (tx Transaction) change() uint64 {
	value, _ := tx.output(tx.Input.Address)
	return value
}

// output returns the value owed to the account, summed over every key that
// spells the account.
func (tx Transaction) output(accountID AccountID) (uint64, bool) {
	var total uint64
	var exists bool

	for id, value := range tx.OutputMap {
		if id.Equal(accountID) {
			total += value
			exists = true
		}
	}

	return total, exists
}

// checkOutputAccounts requires every output key to be a well formed account
// and no two keys to name the same account.
func checkOutputAccounts(outputMap map[AccountID]uint64) error {
	seen := make(map[AccountID]AccountID, len(outputMap))

	for accountID := range outputMap {
		if !accountID.IsAccountID() {
			return fmt.Errorf("%w: invalid output address %q", ErrMalformedOutputMap, accountID)
		}

		key := normalize(accountID)
		if prev, exists := seen[key]; exists {
			return fmt.Errorf("%w: outputs %s and %s name the same account", ErrMalformedOutputMap, prev, accountID)
		}
		seen[key] = accountID
	}

	return nil
}

// newInput signs the output map on behalf of the signer.
func newInput(signer Signer, amount uint64, outputMap map[AccountID]uint64) (Input, error) {
	sig, err := signer.Sign(outputMap)
	if err != nil {
		return Input{}, errors.Join(ErrInvalidSignature, err)
	}

	input := Input{
		Timestamp: time.Now().UnixMilli(),
		Amount:    amount,
		Address:   signer.AccountID(),
		Signature: sig,
	}

	return input, nil
}

// =============================================================================

// ValidTransaction is the function form of Transaction.Validate.
func ValidTransaction(tx Transaction) error {
	return tx.Validate()
}
