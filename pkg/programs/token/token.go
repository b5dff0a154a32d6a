// Package token implements a minimal fungible Token program.
//
// The Treasury program never mutates token accounts itself; it emits
// chained calls into this program:
//   - NewFungibleDefinition creates a token definition and mints the
//     initial supply into a holding (claiming both accounts).
//   - Transfer moves an amount between two holdings of the same
//     definition; the source holding must be authorized, either by a
//     transaction signature or by a PDA delegation from the caller.
package token

import (
	"fmt"

	"github.com/zledger/treasury/pkg/types"
)

// Program implements the Token program.
type Program struct {
	ProgramID types.Pubkey
}

// New creates a Token program instance.
func New(programID types.Pubkey) *Program {
	return &Program{ProgramID: programID}
}

// ID returns the program's identity.
func (p *Program) ID() types.Pubkey {
	return p.ProgramID
}

// Execute runs one Token instruction against the given pre-state
// accounts.
func (p *Program) Execute(preStates []types.AccountWithMetadata, instruction []byte) (*types.ProgramOutput, error) {
	discriminator, err := ParseInstructionDiscriminator(instruction)
	if err != nil {
		return nil, err
	}

	var instructionData []byte
	if len(instruction) > 1 {
		instructionData = instruction[1:]
	}

	switch discriminator {
	case InstructionNewFungibleDefinition:
		var inst NewFungibleDefinitionInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		return handleNewFungibleDefinition(preStates, &inst)

	case InstructionTransfer:
		var inst TransferInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		return handleTransfer(preStates, &inst)

	default:
		return nil, fmt.Errorf("%w: unknown instruction %d", ErrInvalidInstructionData, discriminator)
	}
}

// handleNewFungibleDefinition creates a definition and mints its
// supply.
// Account layout:
//
//	[0] token definition (uninitialized, claimed here)
//	[1] destination holding (uninitialized, claimed here, authorized)
func handleNewFungibleDefinition(preStates []types.AccountWithMetadata, inst *NewFungibleDefinitionInstruction) (*types.ProgramOutput, error) {
	if len(preStates) != 2 {
		return nil, fmt.Errorf("%w: NewFungibleDefinition requires 2 accounts, got %d", ErrMalformedAccountList, len(preStates))
	}
	definitionAcct := preStates[0]
	holdingAcct := preStates[1]

	if !definitionAcct.Account.IsUninitialized() {
		return nil, fmt.Errorf("%w: token definition", ErrAccountAlreadyInitialized)
	}
	if !holdingAcct.Account.IsUninitialized() {
		return nil, fmt.Errorf("%w: destination holding", ErrAccountAlreadyInitialized)
	}
	if !holdingAcct.IsAuthorized {
		return nil, fmt.Errorf("%w: destination holding", ErrAccountNotAuthorized)
	}

	def := &Definition{Name: inst.Name, TotalSupply: inst.TotalSupply}
	definitionPost, err := types.NewAccount(def.Serialize())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}

	holding := &Holding{Definition: definitionAcct.AccountID, Amount: inst.TotalSupply}
	holdingPost, err := types.NewAccount(holding.Serialize())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}

	return &types.ProgramOutput{
		PostStates: []types.PostState{
			types.NewClaimedPostState(definitionPost),
			types.NewClaimedPostState(holdingPost),
		},
	}, nil
}

// handleTransfer moves an amount between holdings.
// Account layout:
//
//	[0] source holding (authorized)
//	[1] destination holding
func handleTransfer(preStates []types.AccountWithMetadata, inst *TransferInstruction) (*types.ProgramOutput, error) {
	if len(preStates) != 2 {
		return nil, fmt.Errorf("%w: Transfer requires 2 accounts, got %d", ErrMalformedAccountList, len(preStates))
	}
	sourceAcct := preStates[0]
	destAcct := preStates[1]

	if !sourceAcct.IsAuthorized {
		return nil, fmt.Errorf("%w: source holding", ErrAccountNotAuthorized)
	}

	source, err := DeserializeHolding(sourceAcct.Account.Data)
	if err != nil {
		return nil, err
	}

	// An uninitialized destination becomes a fresh holding of the
	// source's definition; anything else must decode and match.
	var dest *Holding
	claimed := false
	if destAcct.Account.IsUninitialized() {
		dest = &Holding{Definition: source.Definition}
		claimed = true
	} else {
		dest, err = DeserializeHolding(destAcct.Account.Data)
		if err != nil {
			return nil, err
		}
		if dest.Definition != source.Definition {
			return nil, fmt.Errorf("%w: source %s, destination %s", ErrDefinitionMismatch, source.Definition, dest.Definition)
		}
	}

	if source.Amount < inst.Amount {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, inst.Amount, source.Amount)
	}
	source.Amount -= inst.Amount
	dest.Amount += inst.Amount

	sourcePost, err := types.NewAccount(source.Serialize())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	destPost, err := types.NewAccount(dest.Serialize())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}

	destState := types.NewPostState(destPost)
	if claimed {
		destState = types.NewClaimedPostState(destPost)
	}

	return &types.ProgramOutput{
		PostStates: []types.PostState{
			types.NewPostState(sourcePost),
			destState,
		},
	}, nil
}
