package treasury

import (
	"fmt"

	"github.com/zledger/treasury/pkg/programs/token"
	"github.com/zledger/treasury/pkg/types"
)

// createVault handles the CreateVault instruction.
// Account layout:
//
//	[0] treasury state PDA (claimed on first use)
//	[1] token definition (uninitialized, claimed by the Token program)
//	[2] vault holding PDA (uninitialized, claimed by the Token program)
//
// The handler only mutates the treasury state; the definition and
// holding are written by the chained NewFungibleDefinition call. The
// vault holding is handed over with IsAuthorized set and its PDA seed
// attached, so the Token program sees a legitimate mint destination.
func (p *Program) createVault(preStates []types.AccountWithMetadata, inst *CreateVaultInstruction) (*types.ProgramOutput, error) {
	if len(inst.AuthorizedAccounts) == 0 {
		return nil, fmt.Errorf("%w: CreateVault needs at least one authorized account", ErrNoAuthorizedAccounts)
	}

	treasuryAcct := preStates[0]
	definitionAcct := preStates[1]
	vaultAcct := preStates[2]

	isFirstUse := treasuryAcct.Account.IsUninitialized()
	state := &TreasuryState{}
	if !isFirstUse {
		var err error
		state, err = DeserializeTreasuryState(treasuryAcct.Account.Data)
		if err != nil {
			return nil, fmt.Errorf("account 0: %w", err)
		}
	}

	state.VaultCount++
	state.AuthorizedAccounts = inst.AuthorizedAccounts

	stateBytes, err := state.Serialize()
	if err != nil {
		return nil, err
	}
	treasuryPost, err := types.NewAccount(stateBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: treasury state: %v", ErrSerialization, err)
	}

	treasuryPostState := types.NewPostState(treasuryPost)
	if isFirstUse {
		treasuryPostState = types.NewClaimedPostState(treasuryPost)
	}

	// Chain to Token NewFungibleDefinition: it claims the definition
	// and mints the initial supply into the vault holding.
	tokenInst := token.NewFungibleDefinitionInstruction{
		TotalSupply: inst.InitialSupply,
		Name:        inst.TokenName,
	}
	vaultForChain := vaultAcct.Clone()
	vaultForChain.IsAuthorized = true

	chained := types.NewChainedCall(
		inst.TokenProgramID,
		tokenInst.Encode(),
		[]types.AccountWithMetadata{definitionAcct.Clone(), vaultForChain},
	).WithSeeds(VaultHoldingSeed(definitionAcct.AccountID))

	return &types.ProgramOutput{
		PostStates: []types.PostState{
			treasuryPostState,
			types.NewPostState(definitionAcct.Account.Clone()),
			types.NewPostState(vaultAcct.Account.Clone()),
		},
		ChainedCalls: []types.ChainedCall{chained},
	}, nil
}

// send handles the Send instruction.
// Account layout:
//
//	[0] treasury state PDA
//	[1] vault holding PDA
//	[2] recipient holding
//	[3] signer (must be authorized and in the treasury's set)
func (p *Program) send(preStates []types.AccountWithMetadata, inst *SendInstruction) (*types.ProgramOutput, error) {
	treasuryAcct := preStates[0]
	vaultAcct := preStates[1]
	recipientAcct := preStates[2]
	signerAcct := preStates[3]

	state, err := DeserializeTreasuryState(treasuryAcct.Account.Data)
	if err != nil {
		return nil, fmt.Errorf("account 0: %w", err)
	}

	if !state.IsAuthorizedAccount(signerAcct.AccountID) {
		return nil, fmt.Errorf("%w: signer %s is not an authorized account", ErrUnauthorized, signerAcct.AccountID)
	}
	if !signerAcct.IsAuthorized {
		return nil, fmt.Errorf("%w: transaction not signed by %s", ErrUnauthorized, signerAcct.AccountID)
	}

	definitionID, err := vaultDefinitionID(vaultAcct, 1)
	if err != nil {
		return nil, err
	}

	// Delegate the program's own authority over the vault: the holding
	// is escalated to authorized and the seed proving the delegation
	// is attached for the host to verify.
	vaultForChain := vaultAcct.Clone()
	vaultForChain.IsAuthorized = true

	chained := transferCall(inst.TokenProgramID, inst.Amount, vaultForChain, recipientAcct).
		WithSeeds(VaultHoldingSeed(definitionID))

	out := types.Passthrough(preStates)
	out.ChainedCalls = []types.ChainedCall{chained}
	return out, nil
}

// deposit handles the Deposit instruction.
// Account layout:
//
//	[0] treasury state PDA (read-only here)
//	[1] sender holding (authorized by the sender's own signature)
//	[2] vault holding PDA
//
// No treasury-level gate applies: the sender authorized their own
// spend, so the transfer is forwarded unmodified and without seeds.
func (p *Program) deposit(preStates []types.AccountWithMetadata, inst *DepositInstruction) (*types.ProgramOutput, error) {
	senderAcct := preStates[1]
	vaultAcct := preStates[2]

	chained := transferCall(inst.TokenProgramID, inst.Amount, senderAcct, vaultAcct)

	out := types.Passthrough(preStates)
	out.ChainedCalls = []types.ChainedCall{chained}
	return out, nil
}

// vaultDefinitionID extracts the token definition id embedded in a
// vault holding. The holding is otherwise opaque to this program; the
// buffer must at least cover the fixed-offset id field.
func vaultDefinitionID(vault types.AccountWithMetadata, accountIndex int) (types.Pubkey, error) {
	need := token.HoldingDefinitionOffset + 32
	if len(vault.Account.Data) < need {
		return types.Pubkey{}, fmt.Errorf("%w: account %d: vault holding too short (len=%d, need %d)",
			ErrDeserialization, accountIndex, len(vault.Account.Data), need)
	}
	var id types.Pubkey
	copy(id[:], vault.Account.Data[token.HoldingDefinitionOffset:need])
	return id, nil
}

// transferCall builds a chained Token Transfer moving amount from
// source to dest. Authorization flags pass through exactly as given:
// callers escalate the source themselves when, and only when, they
// delegate the program's own PDA authority over it.
func transferCall(tokenProgramID types.Pubkey, amount uint64, source, dest types.AccountWithMetadata) types.ChainedCall {
	tokenInst := token.TransferInstruction{Amount: amount}

	return types.NewChainedCall(
		tokenProgramID,
		tokenInst.Encode(),
		[]types.AccountWithMetadata{source.Clone(), dest.Clone()},
	)
}
