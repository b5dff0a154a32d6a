package token

import (
	"encoding/binary"
	"fmt"
)

// Token program instruction discriminators (first byte of the
// instruction payload).
const (
	InstructionNewFungibleDefinition uint8 = 0
	InstructionTransfer              uint8 = 1
)

// ParseInstructionDiscriminator extracts the discriminator byte.
func ParseInstructionDiscriminator(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("%w: empty instruction", ErrInvalidInstructionData)
	}
	return data[0], nil
}

// NewFungibleDefinitionInstruction creates a token definition and
// mints the full initial supply into a holding.
type NewFungibleDefinitionInstruction struct {
	TotalSupply uint64         // Supply minted into the holding
	Name        [NameSize]byte // Token name
}

// Decode decodes a NewFungibleDefinition instruction from bytes.
func (inst *NewFungibleDefinitionInstruction) Decode(data []byte) error {
	// Data layout: supply (8) + name (6)
	if len(data) < 8+NameSize {
		return fmt.Errorf("%w: NewFungibleDefinition requires %d bytes, got %d", ErrInvalidInstructionData, 8+NameSize, len(data))
	}
	inst.TotalSupply = binary.LittleEndian.Uint64(data[0:8])
	copy(inst.Name[:], data[8:8+NameSize])
	return nil
}

// Encode encodes a NewFungibleDefinition instruction to bytes.
func (inst *NewFungibleDefinitionInstruction) Encode() []byte {
	data := make([]byte, 1+8+NameSize)
	data[0] = InstructionNewFungibleDefinition
	binary.LittleEndian.PutUint64(data[1:9], inst.TotalSupply)
	copy(data[9:], inst.Name[:])
	return data
}

// TransferInstruction moves an amount between two holdings of the
// same definition.
type TransferInstruction struct {
	Amount uint64 // Amount to move
}

// Decode decodes a Transfer instruction from bytes.
func (inst *TransferInstruction) Decode(data []byte) error {
	// Data layout: amount (8)
	if len(data) < 8 {
		return fmt.Errorf("%w: Transfer requires 8 bytes, got %d", ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a Transfer instruction to bytes.
func (inst *TransferInstruction) Encode() []byte {
	data := make([]byte, 1+8)
	data[0] = InstructionTransfer
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}
