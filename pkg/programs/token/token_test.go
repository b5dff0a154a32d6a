package token

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/zledger/treasury/pkg/types"
)

func testKey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

func makeAccount(t *testing.T, id types.Pubkey, data []byte, authorized bool) types.AccountWithMetadata {
	t.Helper()
	account, err := types.NewAccount(data)
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	return types.NewAccountWithMetadata(id, account, authorized)
}

func makeHolding(t *testing.T, id, definition types.Pubkey, amount uint64, authorized bool) types.AccountWithMetadata {
	t.Helper()
	h := &Holding{Definition: definition, Amount: amount}
	return makeAccount(t, id, h.Serialize(), authorized)
}

func holdingFromPost(t *testing.T, post types.PostState) *Holding {
	t.Helper()
	h, err := DeserializeHolding(post.Account.Data)
	if err != nil {
		t.Fatalf("DeserializeHolding failed: %v", err)
	}
	return h
}

func TestNewFungibleDefinition(t *testing.T) {
	p := New(testKey("token_program"))
	definitionID := testKey("definition")

	inst := NewFungibleDefinitionInstruction{
		TotalSupply: 1_000_000,
		Name:        [NameSize]byte{'G', 'O', 'L', 'D', 0, 0},
	}
	accounts := []types.AccountWithMetadata{
		makeAccount(t, definitionID, nil, false),
		makeAccount(t, testKey("holding"), nil, true),
	}

	out, err := p.Execute(accounts, inst.Encode())
	if err != nil {
		t.Fatalf("NewFungibleDefinition failed: %v", err)
	}
	if len(out.PostStates) != 2 {
		t.Fatalf("expected 2 post states, got %d", len(out.PostStates))
	}
	if !out.PostStates[0].Claimed || !out.PostStates[1].Claimed {
		t.Error("both accounts should be claimed")
	}

	def, err := DeserializeDefinition(out.PostStates[0].Account.Data)
	if err != nil {
		t.Fatalf("DeserializeDefinition failed: %v", err)
	}
	if def.TotalSupply != 1_000_000 {
		t.Errorf("supply = %d, want 1000000", def.TotalSupply)
	}

	holding := holdingFromPost(t, out.PostStates[1])
	if holding.Definition != definitionID {
		t.Error("holding must reference the new definition")
	}
	if holding.Amount != 1_000_000 {
		t.Errorf("minted amount = %d, want 1000000", holding.Amount)
	}
}

func TestNewFungibleDefinition_Rejections(t *testing.T) {
	p := New(testKey("token_program"))
	definitionID := testKey("definition")
	inst := NewFungibleDefinitionInstruction{TotalSupply: 1}

	existingDef := (&Definition{TotalSupply: 5}).Serialize()

	tests := []struct {
		name     string
		accounts []types.AccountWithMetadata
		wantErr  error
	}{
		{
			"definition already initialized",
			[]types.AccountWithMetadata{
				makeAccount(t, definitionID, existingDef, false),
				makeAccount(t, testKey("holding"), nil, true),
			},
			ErrAccountAlreadyInitialized,
		},
		{
			"holding already initialized",
			[]types.AccountWithMetadata{
				makeAccount(t, definitionID, nil, false),
				makeHolding(t, testKey("holding"), definitionID, 3, true),
			},
			ErrAccountAlreadyInitialized,
		},
		{
			"holding not authorized",
			[]types.AccountWithMetadata{
				makeAccount(t, definitionID, nil, false),
				makeAccount(t, testKey("holding"), nil, false),
			},
			ErrAccountNotAuthorized,
		},
		{
			"wrong account count",
			[]types.AccountWithMetadata{
				makeAccount(t, definitionID, nil, false),
			},
			ErrMalformedAccountList,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Execute(tt.accounts, inst.Encode())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTransfer(t *testing.T) {
	p := New(testKey("token_program"))
	definitionID := testKey("definition")

	inst := TransferInstruction{Amount: 30}
	accounts := []types.AccountWithMetadata{
		makeHolding(t, testKey("source"), definitionID, 100, true),
		makeHolding(t, testKey("dest"), definitionID, 5, false),
	}

	out, err := p.Execute(accounts, inst.Encode())
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if got := holdingFromPost(t, out.PostStates[0]).Amount; got != 70 {
		t.Errorf("source balance = %d, want 70", got)
	}
	if got := holdingFromPost(t, out.PostStates[1]).Amount; got != 35 {
		t.Errorf("dest balance = %d, want 35", got)
	}
	if out.PostStates[0].Claimed || out.PostStates[1].Claimed {
		t.Error("existing holdings must not be claimed")
	}
}

// Transferring to an all-zero account claims it as a fresh holding of
// the source's definition.
func TestTransfer_ClaimsUninitializedDestination(t *testing.T) {
	p := New(testKey("token_program"))
	definitionID := testKey("definition")

	inst := TransferInstruction{Amount: 30}
	accounts := []types.AccountWithMetadata{
		makeHolding(t, testKey("source"), definitionID, 100, true),
		makeAccount(t, testKey("dest"), nil, false),
	}

	out, err := p.Execute(accounts, inst.Encode())
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if !out.PostStates[1].Claimed {
		t.Error("uninitialized destination should be claimed")
	}
	dest := holdingFromPost(t, out.PostStates[1])
	if dest.Definition != definitionID {
		t.Error("fresh holding must adopt the source's definition")
	}
	if dest.Amount != 30 {
		t.Errorf("dest balance = %d, want 30", dest.Amount)
	}
}

func TestTransfer_Rejections(t *testing.T) {
	p := New(testKey("token_program"))
	defA := testKey("definition_a")
	defB := testKey("definition_b")

	tests := []struct {
		name     string
		amount   uint64
		accounts []types.AccountWithMetadata
		wantErr  error
	}{
		{
			"unauthorized source",
			10,
			[]types.AccountWithMetadata{
				makeHolding(t, testKey("source"), defA, 100, false),
				makeHolding(t, testKey("dest"), defA, 0, false),
			},
			ErrAccountNotAuthorized,
		},
		{
			"insufficient funds",
			101,
			[]types.AccountWithMetadata{
				makeHolding(t, testKey("source"), defA, 100, true),
				makeHolding(t, testKey("dest"), defA, 0, false),
			},
			ErrInsufficientFunds,
		},
		{
			"definition mismatch",
			10,
			[]types.AccountWithMetadata{
				makeHolding(t, testKey("source"), defA, 100, true),
				makeHolding(t, testKey("dest"), defB, 0, false),
			},
			ErrDefinitionMismatch,
		},
		{
			"uninitialized source",
			10,
			[]types.AccountWithMetadata{
				makeAccount(t, testKey("source"), nil, true),
				makeHolding(t, testKey("dest"), defA, 0, false),
			},
			ErrInvalidAccountData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := TransferInstruction{Amount: tt.amount}
			_, err := p.Execute(tt.accounts, inst.Encode())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExecute_UnknownDiscriminator(t *testing.T) {
	p := New(testKey("token_program"))
	_, err := p.Execute(nil, []byte{0x7f})
	if !errors.Is(err, ErrInvalidInstructionData) {
		t.Fatalf("expected ErrInvalidInstructionData, got %v", err)
	}
}
