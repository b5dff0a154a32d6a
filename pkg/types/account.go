package types

import (
	"bytes"
	"fmt"
)

// MaxAccountDataSize is the fixed capacity of an account data buffer.
const MaxAccountDataSize = 1024

// Account is a ledger account: an opaque byte buffer of bounded
// capacity. An account whose buffer is empty or all zero bytes is
// uninitialized; the first program to claim it becomes its owner.
type Account struct {
	Data []byte
}

// NewAccount creates an account with the given data.
// The data must fit within MaxAccountDataSize.
func NewAccount(data []byte) (Account, error) {
	if len(data) > MaxAccountDataSize {
		return Account{}, fmt.Errorf("account data exceeds capacity: %d > %d", len(data), MaxAccountDataSize)
	}
	acc := Account{}
	if data != nil {
		acc.Data = make([]byte, len(data))
		copy(acc.Data, data)
	}
	return acc, nil
}

// Clone creates a deep copy of the account.
func (a Account) Clone() Account {
	clone := Account{}
	if a.Data != nil {
		clone.Data = make([]byte, len(a.Data))
		copy(clone.Data, a.Data)
	}
	return clone
}

// Equal reports whether two accounts hold identical bytes.
func (a Account) Equal(other Account) bool {
	return bytes.Equal(a.Data, other.Data)
}

// IsUninitialized reports whether the account is in its default
// state. An all-zero buffer is the deliberate sentinel for "never
// written": programs detect first use with this predicate rather than
// comparing against a default value.
func (a Account) IsUninitialized() bool {
	for _, b := range a.Data {
		if b != 0 {
			return false
		}
	}
	return true
}

// DataLen returns the length of the account data.
func (a Account) DataLen() int {
	return len(a.Data)
}

// AccountWithMetadata is an account together with its derived id and
// the host-assigned authorization flag. IsAuthorized is true iff the
// transaction's signature set, or a valid PDA delegation, covers this
// account. Programs consume the flag; they never verify signatures.
type AccountWithMetadata struct {
	AccountID    Pubkey
	Account      Account
	IsAuthorized bool
}

// NewAccountWithMetadata creates execution-time account metadata.
func NewAccountWithMetadata(id Pubkey, account Account, isAuthorized bool) AccountWithMetadata {
	return AccountWithMetadata{
		AccountID:    id,
		Account:      account,
		IsAuthorized: isAuthorized,
	}
}

// Clone creates a deep copy of the account and its metadata.
func (m AccountWithMetadata) Clone() AccountWithMetadata {
	return AccountWithMetadata{
		AccountID:    m.AccountID,
		Account:      m.Account.Clone(),
		IsAuthorized: m.IsAuthorized,
	}
}

// PostState is the outcome of an instruction for one pre-state
// account: the new account bytes plus a claim marker. Claimed means
// this call is initializing the account and takes ownership of it.
type PostState struct {
	Account Account
	Claimed bool
}

// NewPostState creates a post state that keeps the current ownership.
func NewPostState(account Account) PostState {
	return PostState{Account: account}
}

// NewClaimedPostState creates a post state that claims the account
// for the executing program.
func NewClaimedPostState(account Account) PostState {
	return PostState{Account: account, Claimed: true}
}

// ChainedCall is a request for the host to invoke another program's
// instruction with explicitly delegated authority. Seeds prove that
// any authorization escalated on the handed-over pre-states really
// belongs to the calling program: each escalated account id must be
// derivable from the caller's program id and one of the seeds.
type ChainedCall struct {
	ProgramID       Pubkey
	InstructionData []byte
	PreStates       []AccountWithMetadata
	Seeds           []Seed
}

// NewChainedCall creates a chained call without delegation seeds.
func NewChainedCall(programID Pubkey, instructionData []byte, preStates []AccountWithMetadata) ChainedCall {
	return ChainedCall{
		ProgramID:       programID,
		InstructionData: instructionData,
		PreStates:       preStates,
	}
}

// WithSeeds attaches PDA delegation seeds to the call.
func (c ChainedCall) WithSeeds(seeds ...Seed) ChainedCall {
	c.Seeds = append(c.Seeds, seeds...)
	return c
}

// ProgramOutput is the full result of one program invocation: one
// post state per pre state, in the same order, plus any chained calls
// for the host to execute.
type ProgramOutput struct {
	PostStates   []PostState
	ChainedCalls []ChainedCall
}

// Passthrough returns an output that leaves every pre-state account
// unchanged. Handlers start from this when they only emit chained
// calls.
func Passthrough(preStates []AccountWithMetadata) *ProgramOutput {
	out := &ProgramOutput{
		PostStates: make([]PostState, len(preStates)),
	}
	for i, pre := range preStates {
		out.PostStates[i] = NewPostState(pre.Account.Clone())
	}
	return out
}
