// Package treasury implements the Treasury program.
//
// The Treasury program manages:
//   - Token vaults: creating a vault mints a fresh token supply into a
//     program-derived holding, which can then be paid out (Send) or
//     topped up (Deposit) through chained Token program calls.
//   - An M-of-N multisig authority: membership, threshold and a
//     replay-protection nonce, with every mutation gated on the
//     threshold signature count.
//
// Handlers are pure: given pre-state accounts and a decoded
// instruction they return one post state per pre state plus any
// chained calls, or an error and nothing else. Signature verification
// happens in the host; handlers only consume the per-account
// IsAuthorized flag.
package treasury

import (
	"fmt"

	"github.com/zledger/treasury/pkg/types"
)

// Program implements the Treasury program.
type Program struct {
	// ProgramID is the deployed program's identity, used by hosts to
	// verify PDA delegations on the chained calls it emits.
	ProgramID types.Pubkey
}

// New creates a Treasury program instance.
func New(programID types.Pubkey) *Program {
	return &Program{ProgramID: programID}
}

// ID returns the program's identity.
func (p *Program) ID() types.Pubkey {
	return p.ProgramID
}

// Execute runs one Treasury instruction against the given pre-state
// accounts. The instruction payload is a discriminator byte followed
// by fixed little-endian fields.
//
// Account contracts are enforced before any handler runs; a list that
// does not match fails fast with ErrMalformedAccountList and no state
// is touched.
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
	case InstructionCreateVault:
		var inst CreateVaultInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		if err := requireAccounts(preStates, 3, 3, "CreateVault"); err != nil {
			return nil, err
		}
		return p.createVault(preStates, &inst)

	case InstructionSend:
		var inst SendInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		if err := requireAccounts(preStates, 4, 4, "Send"); err != nil {
			return nil, err
		}
		return p.send(preStates, &inst)

	case InstructionDeposit:
		var inst DepositInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		if err := requireAccounts(preStates, 3, 3, "Deposit"); err != nil {
			return nil, err
		}
		return p.deposit(preStates, &inst)

	case InstructionCreateMultisig:
		var inst CreateMultisigInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		if err := requireAccounts(preStates, 1, 1, "CreateMultisig"); err != nil {
			return nil, err
		}
		return p.createMultisig(preStates, &inst)

	case InstructionExecute:
		var inst ExecuteInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		if err := requireAccounts(preStates, 4, -1, "Execute"); err != nil {
			return nil, err
		}
		return p.executeTransfer(preStates, &inst)

	case InstructionAddMember:
		var inst AddMemberInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		if err := requireAccounts(preStates, 2, -1, "AddMember"); err != nil {
			return nil, err
		}
		return p.addMember(preStates, &inst)

	case InstructionRemoveMember:
		var inst RemoveMemberInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		if err := requireAccounts(preStates, 2, -1, "RemoveMember"); err != nil {
			return nil, err
		}
		return p.removeMember(preStates, &inst)

	case InstructionChangeThreshold:
		var inst ChangeThresholdInstruction
		if err := inst.Decode(instructionData); err != nil {
			return nil, err
		}
		if err := requireAccounts(preStates, 2, -1, "ChangeThreshold"); err != nil {
			return nil, err
		}
		return p.changeThreshold(preStates, &inst)

	default:
		return nil, fmt.Errorf("%w: unknown instruction %d", ErrInvalidInstructionData, discriminator)
	}
}

// requireAccounts enforces an instruction's account-count contract.
// max < 0 means unbounded (instructions taking a variable signer
// tail).
func requireAccounts(preStates []types.AccountWithMetadata, min, max int, name string) error {
	got := len(preStates)
	if got < min || (max >= 0 && got > max) {
		if max == min {
			return fmt.Errorf("%w: %s requires %d accounts, got %d", ErrMalformedAccountList, name, min, got)
		}
		return fmt.Errorf("%w: %s requires at least %d accounts, got %d", ErrMalformedAccountList, name, min, got)
	}
	return nil
}
