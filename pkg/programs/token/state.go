package token

import (
	"encoding/binary"
	"fmt"

	"github.com/zledger/treasury/pkg/types"
)

// Account state sizes and offsets
const (
	// NameSize is the fixed size of a token name.
	NameSize = 6

	// DefinitionSize is the size of a serialized Definition (15 bytes).
	DefinitionSize = 1 + NameSize + 8

	// HoldingSize is the size of a serialized Holding (41 bytes).
	HoldingSize = 1 + 32 + 8

	// HoldingDefinitionOffset is the byte offset of the definition id
	// inside a holding. Callers that only need the definition id (the
	// treasury reads it to recompute vault PDA seeds) read 32 bytes
	// from this offset.
	HoldingDefinitionOffset = 1

	// versionInitialized marks an account as written by this program.
	versionInitialized uint8 = 1
)

// Definition represents a fungible token definition.
// Layout (15 bytes total):
//   - version: u8 (1 byte)
//   - name: [6]byte
//   - total_supply: u64 LE (8 bytes)
type Definition struct {
	Name        [NameSize]byte
	TotalSupply uint64
}

// DeserializeDefinition decodes a Definition from account bytes.
func DeserializeDefinition(data []byte) (*Definition, error) {
	if len(data) < DefinitionSize {
		return nil, fmt.Errorf("%w: definition requires %d bytes, got %d", ErrInvalidAccountData, DefinitionSize, len(data))
	}
	if data[0] != versionInitialized {
		return nil, fmt.Errorf("%w: definition not initialized", ErrInvalidAccountData)
	}
	def := &Definition{}
	copy(def.Name[:], data[1:1+NameSize])
	def.TotalSupply = binary.LittleEndian.Uint64(data[1+NameSize : DefinitionSize])
	return def, nil
}

// Serialize encodes the Definition to account bytes.
func (d *Definition) Serialize() []byte {
	data := make([]byte, DefinitionSize)
	data[0] = versionInitialized
	copy(data[1:], d.Name[:])
	binary.LittleEndian.PutUint64(data[1+NameSize:], d.TotalSupply)
	return data
}

// Holding represents a token balance account.
// Layout (41 bytes total):
//   - version: u8 (1 byte)
//   - definition: Pubkey (32 bytes)
//   - amount: u64 LE (8 bytes)
type Holding struct {
	Definition types.Pubkey
	Amount     uint64
}

// DeserializeHolding decodes a Holding from account bytes.
func DeserializeHolding(data []byte) (*Holding, error) {
	if len(data) < HoldingSize {
		return nil, fmt.Errorf("%w: holding requires %d bytes, got %d", ErrInvalidAccountData, HoldingSize, len(data))
	}
	if data[0] != versionInitialized {
		return nil, fmt.Errorf("%w: holding not initialized", ErrInvalidAccountData)
	}
	h := &Holding{}
	copy(h.Definition[:], data[HoldingDefinitionOffset:HoldingDefinitionOffset+32])
	h.Amount = binary.LittleEndian.Uint64(data[HoldingDefinitionOffset+32 : HoldingSize])
	return h, nil
}

// Serialize encodes the Holding to account bytes.
func (h *Holding) Serialize() []byte {
	data := make([]byte, HoldingSize)
	data[0] = versionInitialized
	copy(data[HoldingDefinitionOffset:], h.Definition[:])
	binary.LittleEndian.PutUint64(data[HoldingDefinitionOffset+32:], h.Amount)
	return data
}
