package types

import (
	"crypto/sha256"
	"testing"
)

func testKey(seed string) Pubkey {
	return Pubkey(sha256.Sum256([]byte(seed)))
}

func TestNewAccount(t *testing.T) {
	acc, err := NewAccount([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	if acc.DataLen() != 3 {
		t.Errorf("expected 3 bytes, got %d", acc.DataLen())
	}

	if _, err := NewAccount(make([]byte, MaxAccountDataSize)); err != nil {
		t.Errorf("account at capacity should be accepted: %v", err)
	}
	if _, err := NewAccount(make([]byte, MaxAccountDataSize+1)); err == nil {
		t.Error("account over capacity must be rejected")
	}
}

func TestNewAccount_CopiesInput(t *testing.T) {
	src := []byte{1, 2, 3}
	acc, err := NewAccount(src)
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	src[0] = 99
	if acc.Data[0] != 1 {
		t.Error("account must not alias the caller's buffer")
	}
}

func TestAccount_IsUninitialized(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"nil", nil, true},
		{"empty", []byte{}, true},
		{"all zeros", make([]byte, 64), true},
		{"one nonzero byte", []byte{0, 0, 1, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewAccount(tt.data)
			if err != nil {
				t.Fatalf("NewAccount failed: %v", err)
			}
			if got := acc.IsUninitialized(); got != tt.want {
				t.Errorf("IsUninitialized = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccount_Clone(t *testing.T) {
	acc, _ := NewAccount([]byte{1, 2, 3})
	clone := acc.Clone()
	clone.Data[0] = 99
	if acc.Data[0] != 1 {
		t.Error("clone must not share the underlying buffer")
	}
	if !acc.Equal(acc.Clone()) {
		t.Error("a fresh clone must compare equal")
	}
}

func TestAccount_Equal(t *testing.T) {
	a, _ := NewAccount([]byte{1, 2})
	b, _ := NewAccount([]byte{1, 2})
	c, _ := NewAccount([]byte{1, 3})
	empty, _ := NewAccount(nil)

	if !a.Equal(b) {
		t.Error("identical bytes should compare equal")
	}
	if a.Equal(c) {
		t.Error("different bytes should not compare equal")
	}
	if !empty.Equal(Account{}) {
		t.Error("empty accounts should compare equal")
	}
}

func TestPassthrough(t *testing.T) {
	a, _ := NewAccount([]byte{1, 2, 3})
	b, _ := NewAccount(nil)
	preStates := []AccountWithMetadata{
		NewAccountWithMetadata(testKey("a"), a, true),
		NewAccountWithMetadata(testKey("b"), b, false),
	}

	out := Passthrough(preStates)
	if len(out.PostStates) != 2 {
		t.Fatalf("expected 2 post states, got %d", len(out.PostStates))
	}
	for i, post := range out.PostStates {
		if post.Claimed {
			t.Errorf("post state %d must not be claimed", i)
		}
		if !post.Account.Equal(preStates[i].Account) {
			t.Errorf("post state %d should match its pre state", i)
		}
	}

	// The passthrough must not alias the pre-state buffers.
	out.PostStates[0].Account.Data[0] = 99
	if preStates[0].Account.Data[0] != 1 {
		t.Error("passthrough must deep-copy account data")
	}
}

func TestChainedCall_WithSeeds(t *testing.T) {
	call := NewChainedCall(testKey("program"), []byte{1}, nil)
	if len(call.Seeds) != 0 {
		t.Fatal("fresh call should have no seeds")
	}

	var s1, s2 Seed
	s1[0], s2[0] = 1, 2
	call = call.WithSeeds(s1).WithSeeds(s2)
	if len(call.Seeds) != 2 {
		t.Fatalf("expected 2 seeds, got %d", len(call.Seeds))
	}
	if call.Seeds[0] != s1 || call.Seeds[1] != s2 {
		t.Error("seeds must be appended in order")
	}
}

func TestPubkey_Base58RoundTrip(t *testing.T) {
	key := testKey("round_trip")
	decoded, err := PubkeyFromBase58(key.String())
	if err != nil {
		t.Fatalf("PubkeyFromBase58 failed: %v", err)
	}
	if decoded != key {
		t.Error("base58 round trip must preserve the key")
	}

	if _, err := PubkeyFromBase58("not base58 at all!!"); err == nil {
		t.Error("invalid base58 must be rejected")
	}
}

func TestPubkey_IsZero(t *testing.T) {
	var zero Pubkey
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if testKey("nonzero").IsZero() {
		t.Error("derived key should not report IsZero")
	}
}
