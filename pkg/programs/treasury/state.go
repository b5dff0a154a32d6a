package treasury

import (
	"fmt"

	"github.com/near/borsh-go"

	"github.com/zledger/treasury/pkg/pda"
	"github.com/zledger/treasury/pkg/types"
)

// MaxMembers is the maximum number of multisig members.
const MaxMembers = 10

// Well-known PDA seeds for the treasury program's state accounts.
var (
	// TreasuryStateSeed derives the treasury state PDA.
	TreasuryStateSeed = pda.MustConstantSeed("treasury_state")

	// MultisigStateSeed derives the multisig state PDA.
	MultisigStateSeed = pda.MustConstantSeed("multisig_state")
)

// TreasuryStatePDA computes the treasury state account id for a
// deployed program.
func TreasuryStatePDA(programID types.Pubkey) types.Pubkey {
	return pda.Derive(programID, TreasuryStateSeed)
}

// MultisigStatePDA computes the multisig state account id for a
// deployed program.
func MultisigStatePDA(programID types.Pubkey) types.Pubkey {
	return pda.Derive(programID, MultisigStateSeed)
}

// VaultHoldingSeed builds the PDA seed for a vault holding. The seed
// is the token definition's account id, so each token gets exactly
// one vault address under the program.
func VaultHoldingSeed(tokenDefinitionID types.Pubkey) types.Seed {
	return pda.AccountSeed(tokenDefinitionID)
}

// VaultHoldingPDA computes the vault holding account id for a token
// definition.
func VaultHoldingPDA(programID, tokenDefinitionID types.Pubkey) types.Pubkey {
	return pda.Derive(programID, VaultHoldingSeed(tokenDefinitionID))
}

// MultisigState is the M-of-N governance state persisted in the
// multisig PDA. Invariant after every successful mutation:
// 1 <= Threshold <= MemberCount <= MaxMembers, Members unique.
type MultisigState struct {
	Threshold   uint8
	MemberCount uint8
	Members     [][32]byte
	Nonce       uint64
}

// NewMultisigState creates the initial state for a member set.
func NewMultisigState(threshold uint8, members [][32]byte) *MultisigState {
	return &MultisigState{
		Threshold:   threshold,
		MemberCount: uint8(len(members)),
		Members:     members,
		Nonce:       0,
	}
}

// IsMember reports whether key is part of the member set.
func (s *MultisigState) IsMember(key [32]byte) bool {
	for _, m := range s.Members {
		if m == key {
			return true
		}
	}
	return false
}

// CountValidSigners returns the number of distinct members covered by
// the given authorized signer ids. Signers that are not members are
// silently ignored; only the intersection size matters.
func (s *MultisigState) CountValidSigners(signers [][32]byte) int {
	counted := make(map[[32]byte]struct{}, len(signers))
	for _, signer := range signers {
		if _, seen := counted[signer]; seen {
			continue
		}
		if s.IsMember(signer) {
			counted[signer] = struct{}{}
		}
	}
	return len(counted)
}

// DeserializeMultisigState decodes multisig state from account bytes.
func DeserializeMultisigState(data []byte) (*MultisigState, error) {
	state := &MultisigState{}
	if err := borsh.Deserialize(state, data); err != nil {
		return nil, fmt.Errorf("%w: multisig state: %v", ErrDeserialization, err)
	}
	return state, nil
}

// Serialize encodes the multisig state for persistence.
func (s *MultisigState) Serialize() ([]byte, error) {
	data, err := borsh.Serialize(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: multisig state: %v", ErrSerialization, err)
	}
	return data, nil
}

// TreasuryState is the vault bookkeeping state persisted in the
// treasury PDA. AuthorizedAccounts is the signer set allowed to move
// vault funds; it is set at vault creation and never empty afterward.
type TreasuryState struct {
	VaultCount         uint64
	AuthorizedAccounts [][32]byte
}

// IsAuthorizedAccount reports whether key may move vault funds.
func (s *TreasuryState) IsAuthorizedAccount(key [32]byte) bool {
	for _, a := range s.AuthorizedAccounts {
		if a == key {
			return true
		}
	}
	return false
}

// DeserializeTreasuryState decodes treasury state from account bytes.
func DeserializeTreasuryState(data []byte) (*TreasuryState, error) {
	state := &TreasuryState{}
	if err := borsh.Deserialize(state, data); err != nil {
		return nil, fmt.Errorf("%w: treasury state: %v", ErrDeserialization, err)
	}
	return state, nil
}

// Serialize encodes the treasury state for persistence.
func (s *TreasuryState) Serialize() ([]byte, error) {
	data, err := borsh.Serialize(*s)
	if err != nil {
		return nil, fmt.Errorf("%w: treasury state: %v", ErrSerialization, err)
	}
	return data, nil
}
