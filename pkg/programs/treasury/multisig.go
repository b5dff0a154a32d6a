package treasury

import (
	"fmt"

	"github.com/zledger/treasury/pkg/types"
)

// authorizedSignerIDs collects the ids of the signer-tail accounts
// the host marked authorized. Unauthorized accounts in the tail are
// simply not counted.
func authorizedSignerIDs(signerTail []types.AccountWithMetadata) [][32]byte {
	signers := make([][32]byte, 0, len(signerTail))
	for _, acct := range signerTail {
		if acct.IsAuthorized {
			signers = append(signers, acct.AccountID)
		}
	}
	return signers
}

// requireThreshold gates a mutating multisig operation: at least
// Threshold distinct members must be among the authorized signers.
// Signers that are not members are silently ignored.
func requireThreshold(state *MultisigState, signerTail []types.AccountWithMetadata) error {
	got := state.CountValidSigners(authorizedSignerIDs(signerTail))
	if got < int(state.Threshold) {
		return fmt.Errorf("%w: need %d, got %d", ErrInsufficientSignatures, state.Threshold, got)
	}
	return nil
}

// writeMultisigPost serializes mutated multisig state into a post
// state at index 0 of an otherwise pass-through output.
func writeMultisigPost(preStates []types.AccountWithMetadata, state *MultisigState, claimed bool) (*types.ProgramOutput, error) {
	stateBytes, err := state.Serialize()
	if err != nil {
		return nil, err
	}
	post, err := types.NewAccount(stateBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: multisig state: %v", ErrSerialization, err)
	}

	out := types.Passthrough(preStates)
	if claimed {
		out.PostStates[0] = types.NewClaimedPostState(post)
	} else {
		out.PostStates[0] = types.NewPostState(post)
	}
	return out, nil
}

// createMultisig handles the CreateMultisig instruction.
// Account layout:
//
//	[0] multisig state PDA (uninitialized, claimed here)
func (p *Program) createMultisig(preStates []types.AccountWithMetadata, inst *CreateMultisigInstruction) (*types.ProgramOutput, error) {
	multisigAcct := preStates[0]

	// Overwriting a live multisig would bypass its own threshold.
	if !multisigAcct.Account.IsUninitialized() {
		return nil, fmt.Errorf("%w: multisig state already initialized", ErrUnauthorized)
	}

	if inst.Threshold < 1 || int(inst.Threshold) > len(inst.Members) {
		return nil, fmt.Errorf("%w: threshold %d with %d members", ErrInvalidThreshold, inst.Threshold, len(inst.Members))
	}
	if len(inst.Members) > MaxMembers {
		return nil, fmt.Errorf("%w: %d members, max %d", ErrMemberLimitExceeded, len(inst.Members), MaxMembers)
	}
	seen := make(map[[32]byte]struct{}, len(inst.Members))
	for _, m := range inst.Members {
		if _, dup := seen[m]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, types.Pubkey(m))
		}
		seen[m] = struct{}{}
	}

	return writeMultisigPost(preStates, NewMultisigState(inst.Threshold, inst.Members), true)
}

// addMember handles the AddMember instruction.
// Account layout:
//
//	[0] multisig state PDA
//	[1..] signers
func (p *Program) addMember(preStates []types.AccountWithMetadata, inst *AddMemberInstruction) (*types.ProgramOutput, error) {
	state, err := DeserializeMultisigState(preStates[0].Account.Data)
	if err != nil {
		return nil, fmt.Errorf("account 0: %w", err)
	}
	if err := requireThreshold(state, preStates[1:]); err != nil {
		return nil, err
	}

	if state.IsMember(inst.NewMember) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, types.Pubkey(inst.NewMember))
	}
	if int(state.MemberCount) >= MaxMembers {
		return nil, fmt.Errorf("%w: already at %d members", ErrMemberLimitExceeded, MaxMembers)
	}

	state.Members = append(state.Members, inst.NewMember)
	state.MemberCount++
	state.Nonce++

	return writeMultisigPost(preStates, state, false)
}

// removeMember handles the RemoveMember instruction.
// Account layout:
//
//	[0] multisig state PDA
//	[1..] signers
//
// A removal that would leave threshold > member_count is rejected;
// governance must lower the threshold first.
func (p *Program) removeMember(preStates []types.AccountWithMetadata, inst *RemoveMemberInstruction) (*types.ProgramOutput, error) {
	state, err := DeserializeMultisigState(preStates[0].Account.Data)
	if err != nil {
		return nil, fmt.Errorf("account 0: %w", err)
	}
	if err := requireThreshold(state, preStates[1:]); err != nil {
		return nil, err
	}

	if !state.IsMember(inst.Member) {
		return nil, fmt.Errorf("%w: %s", ErrNotAMember, types.Pubkey(inst.Member))
	}
	if int(state.Threshold) > int(state.MemberCount)-1 {
		return nil, fmt.Errorf("%w: removal would leave threshold %d above %d members",
			ErrInvalidThreshold, state.Threshold, state.MemberCount-1)
	}

	members := make([][32]byte, 0, len(state.Members)-1)
	for _, m := range state.Members {
		if m != inst.Member {
			members = append(members, m)
		}
	}
	state.Members = members
	state.MemberCount--
	state.Nonce++

	return writeMultisigPost(preStates, state, false)
}

// changeThreshold handles the ChangeThreshold instruction.
// Account layout:
//
//	[0] multisig state PDA
//	[1..] signers
//
// The gate applies against the current threshold; the new value must
// satisfy 1 <= new_threshold <= member_count.
func (p *Program) changeThreshold(preStates []types.AccountWithMetadata, inst *ChangeThresholdInstruction) (*types.ProgramOutput, error) {
	state, err := DeserializeMultisigState(preStates[0].Account.Data)
	if err != nil {
		return nil, fmt.Errorf("account 0: %w", err)
	}
	if err := requireThreshold(state, preStates[1:]); err != nil {
		return nil, err
	}

	if inst.NewThreshold < 1 || inst.NewThreshold > state.MemberCount {
		return nil, fmt.Errorf("%w: %d with %d members", ErrInvalidThreshold, inst.NewThreshold, state.MemberCount)
	}

	state.Threshold = inst.NewThreshold
	state.Nonce++

	return writeMultisigPost(preStates, state, false)
}

// executeTransfer handles the Execute instruction: a threshold-gated
// payout from the multisig's vault holding.
// Account layout:
//
//	[0] multisig state PDA
//	[1] vault holding PDA
//	[2] recipient holding
//	[3..] signers
func (p *Program) executeTransfer(preStates []types.AccountWithMetadata, inst *ExecuteInstruction) (*types.ProgramOutput, error) {
	state, err := DeserializeMultisigState(preStates[0].Account.Data)
	if err != nil {
		return nil, fmt.Errorf("account 0: %w", err)
	}
	if err := requireThreshold(state, preStates[3:]); err != nil {
		return nil, err
	}

	vaultAcct := preStates[1]
	recipientAcct := preStates[2]

	definitionID, err := vaultDefinitionID(vaultAcct, 1)
	if err != nil {
		return nil, err
	}

	vaultForChain := vaultAcct.Clone()
	vaultForChain.IsAuthorized = true

	chained := transferCall(inst.TokenProgramID, inst.Amount, vaultForChain, recipientAcct).
		WithSeeds(VaultHoldingSeed(definitionID))

	state.Nonce++
	out, err := writeMultisigPost(preStates, state, false)
	if err != nil {
		return nil, err
	}
	out.ChainedCalls = []types.ChainedCall{chained}
	return out, nil
}
