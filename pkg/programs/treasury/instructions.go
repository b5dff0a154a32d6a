package treasury

import (
	"encoding/binary"
	"fmt"

	"github.com/zledger/treasury/pkg/types"
)

// Treasury program instruction discriminators (first byte of the
// instruction payload).
const (
	InstructionCreateVault     uint8 = 0
	InstructionSend            uint8 = 1
	InstructionDeposit         uint8 = 2
	InstructionCreateMultisig  uint8 = 3
	InstructionExecute         uint8 = 4
	InstructionAddMember       uint8 = 5
	InstructionRemoveMember    uint8 = 6
	InstructionChangeThreshold uint8 = 7
)

// TokenNameSize is the fixed size of a token name field.
const TokenNameSize = 6

// ParseInstructionDiscriminator extracts the discriminator byte.
func ParseInstructionDiscriminator(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("%w: empty instruction", ErrInvalidInstructionData)
	}
	return data[0], nil
}

// readMembers decodes a u8-counted list of 32-byte keys.
func readMembers(data []byte) ([][32]byte, int, error) {
	if len(data) < 1 {
		return nil, 0, fmt.Errorf("%w: missing member count", ErrInvalidInstructionData)
	}
	count := int(data[0])
	need := 1 + count*32
	if len(data) < need {
		return nil, 0, fmt.Errorf("%w: member list requires %d bytes, got %d", ErrInvalidInstructionData, need, len(data))
	}
	members := make([][32]byte, count)
	for i := 0; i < count; i++ {
		copy(members[i][:], data[1+i*32:1+(i+1)*32])
	}
	return members, need, nil
}

// writeMembers encodes a u8-counted list of 32-byte keys.
func writeMembers(members [][32]byte) []byte {
	out := make([]byte, 1+len(members)*32)
	out[0] = uint8(len(members))
	for i, m := range members {
		copy(out[1+i*32:], m[:])
	}
	return out
}

// CreateVaultInstruction creates a new token vault: a fresh token
// definition with an initial supply minted into the program's vault
// holding PDA via a chained Token program call.
type CreateVaultInstruction struct {
	TokenName          [TokenNameSize]byte // Name of the new token
	InitialSupply      uint64              // Supply minted into the vault
	TokenProgramID     types.Pubkey        // Token program to chain to
	AuthorizedAccounts [][32]byte          // Keys allowed to move vault funds
}

// Decode decodes a CreateVault instruction from bytes.
func (inst *CreateVaultInstruction) Decode(data []byte) error {
	// Data layout: name (6) + supply (8) + token program (32) + u8-counted member list
	if len(data) < TokenNameSize+8+32+1 {
		return fmt.Errorf("%w: CreateVault requires at least %d bytes, got %d", ErrInvalidInstructionData, TokenNameSize+8+32+1, len(data))
	}
	copy(inst.TokenName[:], data[0:TokenNameSize])
	inst.InitialSupply = binary.LittleEndian.Uint64(data[TokenNameSize : TokenNameSize+8])
	copy(inst.TokenProgramID[:], data[TokenNameSize+8:TokenNameSize+40])
	accounts, _, err := readMembers(data[TokenNameSize+40:])
	if err != nil {
		return err
	}
	inst.AuthorizedAccounts = accounts
	return nil
}

// Encode encodes a CreateVault instruction to bytes.
func (inst *CreateVaultInstruction) Encode() []byte {
	data := make([]byte, 1+TokenNameSize+8+32)
	data[0] = InstructionCreateVault
	copy(data[1:], inst.TokenName[:])
	binary.LittleEndian.PutUint64(data[1+TokenNameSize:], inst.InitialSupply)
	copy(data[1+TokenNameSize+8:], inst.TokenProgramID[:])
	return append(data, writeMembers(inst.AuthorizedAccounts)...)
}

// SendInstruction moves tokens from the treasury vault to a
// recipient, gated on the treasury's authorized account set.
type SendInstruction struct {
	Amount         uint64       // Amount to send
	TokenProgramID types.Pubkey // Token program to chain to
}

// Decode decodes a Send instruction from bytes.
func (inst *SendInstruction) Decode(data []byte) error {
	// Data layout: amount (8) + token program (32)
	if len(data) < 40 {
		return fmt.Errorf("%w: Send requires 40 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	copy(inst.TokenProgramID[:], data[8:40])
	return nil
}

// Encode encodes a Send instruction to bytes.
func (inst *SendInstruction) Encode() []byte {
	data := make([]byte, 1+40)
	data[0] = InstructionSend
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	copy(data[9:41], inst.TokenProgramID[:])
	return data
}

// DepositInstruction moves tokens from an external sender's holding
// into the treasury vault. The sender's own signature authorizes the
// spend; no treasury-level gate applies.
type DepositInstruction struct {
	Amount         uint64       // Amount to deposit
	TokenProgramID types.Pubkey // Token program to chain to
}

// Decode decodes a Deposit instruction from bytes.
func (inst *DepositInstruction) Decode(data []byte) error {
	// Data layout: amount (8) + token program (32)
	if len(data) < 40 {
		return fmt.Errorf("%w: Deposit requires 40 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	copy(inst.TokenProgramID[:], data[8:40])
	return nil
}

// Encode encodes a Deposit instruction to bytes.
func (inst *DepositInstruction) Encode() []byte {
	data := make([]byte, 1+40)
	data[0] = InstructionDeposit
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	copy(data[9:41], inst.TokenProgramID[:])
	return data
}

// CreateMultisigInstruction initializes M-of-N governance state in
// the multisig PDA.
type CreateMultisigInstruction struct {
	Threshold uint8      // Signatures required per mutation
	Members   [][32]byte // Initial member set
}

// Decode decodes a CreateMultisig instruction from bytes.
func (inst *CreateMultisigInstruction) Decode(data []byte) error {
	// Data layout: threshold (1) + u8-counted member list
	if len(data) < 2 {
		return fmt.Errorf("%w: CreateMultisig requires at least 2 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	inst.Threshold = data[0]
	members, _, err := readMembers(data[1:])
	if err != nil {
		return err
	}
	inst.Members = members
	return nil
}

// Encode encodes a CreateMultisig instruction to bytes.
func (inst *CreateMultisigInstruction) Encode() []byte {
	data := []byte{InstructionCreateMultisig, inst.Threshold}
	return append(data, writeMembers(inst.Members)...)
}

// ExecuteInstruction moves tokens from the multisig's vault holding
// to a recipient, gated on the multisig threshold.
type ExecuteInstruction struct {
	Amount         uint64       // Amount to transfer
	TokenProgramID types.Pubkey // Token program to chain to
}

// Decode decodes an Execute instruction from bytes.
func (inst *ExecuteInstruction) Decode(data []byte) error {
	// Data layout: amount (8) + token program (32)
	if len(data) < 40 {
		return fmt.Errorf("%w: Execute requires 40 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	copy(inst.TokenProgramID[:], data[8:40])
	return nil
}

// Encode encodes an Execute instruction to bytes.
func (inst *ExecuteInstruction) Encode() []byte {
	data := make([]byte, 1+40)
	data[0] = InstructionExecute
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	copy(data[9:41], inst.TokenProgramID[:])
	return data
}

// AddMemberInstruction appends a member to the multisig.
type AddMemberInstruction struct {
	NewMember [32]byte // Key to add
}

// Decode decodes an AddMember instruction from bytes.
func (inst *AddMemberInstruction) Decode(data []byte) error {
	// Data layout: member (32)
	if len(data) < 32 {
		return fmt.Errorf("%w: AddMember requires 32 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	copy(inst.NewMember[:], data[0:32])
	return nil
}

// Encode encodes an AddMember instruction to bytes.
func (inst *AddMemberInstruction) Encode() []byte {
	data := make([]byte, 1+32)
	data[0] = InstructionAddMember
	copy(data[1:33], inst.NewMember[:])
	return data
}

// RemoveMemberInstruction removes a member from the multisig.
type RemoveMemberInstruction struct {
	Member [32]byte // Key to remove
}

// Decode decodes a RemoveMember instruction from bytes.
func (inst *RemoveMemberInstruction) Decode(data []byte) error {
	// Data layout: member (32)
	if len(data) < 32 {
		return fmt.Errorf("%w: RemoveMember requires 32 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	copy(inst.Member[:], data[0:32])
	return nil
}

// Encode encodes a RemoveMember instruction to bytes.
func (inst *RemoveMemberInstruction) Encode() []byte {
	data := make([]byte, 1+32)
	data[0] = InstructionRemoveMember
	copy(data[1:33], inst.Member[:])
	return data
}

// ChangeThresholdInstruction updates the multisig threshold.
type ChangeThresholdInstruction struct {
	NewThreshold uint8 // New M in M-of-N
}

// Decode decodes a ChangeThreshold instruction from bytes.
func (inst *ChangeThresholdInstruction) Decode(data []byte) error {
	// Data layout: threshold (1)
	if len(data) < 1 {
		return fmt.Errorf("%w: ChangeThreshold requires 1 byte, got %d", ErrInvalidInstructionData, len(data))
	}
	inst.NewThreshold = data[0]
	return nil
}

// Encode encodes a ChangeThreshold instruction to bytes.
func (inst *ChangeThresholdInstruction) Encode() []byte {
	return []byte{InstructionChangeThreshold, inst.NewThreshold}
}
