package pda

import (
	"crypto/sha256"
	"math/rand"
	"strings"
	"testing"

	"github.com/zledger/treasury/pkg/types"
)

func testKey(seed string) types.Pubkey {
	return types.Pubkey(sha256.Sum256([]byte(seed)))
}

func TestDerive_Deterministic(t *testing.T) {
	program := testKey("program")
	seed := MustConstantSeed("treasury_state")

	first := Derive(program, seed)
	second := Derive(program, seed)
	if first != second {
		t.Error("derivation must be deterministic")
	}
	if first.IsZero() {
		t.Error("derived address must not be all zeros")
	}
}

func TestDerive_DistinctInputs(t *testing.T) {
	programs := []types.Pubkey{testKey("p1"), testKey("p2"), testKey("p3")}
	seeds := []types.Seed{
		MustConstantSeed("treasury_state"),
		MustConstantSeed("multisig_state"),
		AccountSeed(testKey("definition")),
	}

	seen := make(map[types.Pubkey]string)
	for _, program := range programs {
		for _, seed := range seeds {
			addr := Derive(program, seed)
			key := program.String() + "/" + string(seed[:])
			if prev, ok := seen[addr]; ok {
				t.Fatalf("collision between %q and %q", prev, key)
			}
			seen[addr] = key
		}
	}
}

func TestDerive_RandomSeedPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	program := testKey("program")
	other := testKey("other_program")

	for i := 0; i < 500; i++ {
		var a, b types.Seed
		rng.Read(a[:])
		rng.Read(b[:])
		if a == b {
			continue
		}
		if Derive(program, a) == Derive(program, b) {
			t.Fatalf("pair %d: distinct seeds derived the same address", i)
		}
		if Derive(program, a) == Derive(other, a) {
			t.Fatalf("pair %d: distinct programs derived the same address", i)
		}
	}
}

// The seed changes the address even when the tag shares a prefix with
// another tag; padding, not truncation, distinguishes them.
func TestDerive_PrefixTags(t *testing.T) {
	program := testKey("program")
	a := Derive(program, MustConstantSeed("vault"))
	b := Derive(program, MustConstantSeed("vault2"))
	if a == b {
		t.Error("different tags must derive different addresses")
	}
}

func TestConstantSeed(t *testing.T) {
	seed, err := ConstantSeed("treasury_state")
	if err != nil {
		t.Fatalf("ConstantSeed failed: %v", err)
	}
	if string(seed[:14]) != "treasury_state" {
		t.Error("tag bytes should lead the seed")
	}
	for _, b := range seed[14:] {
		if b != 0 {
			t.Fatal("seed must be zero-padded after the tag")
		}
	}

	if _, err := ConstantSeed(strings.Repeat("x", MaxTagLen)); err != nil {
		t.Errorf("tag of exactly %d bytes should be accepted: %v", MaxTagLen, err)
	}
	if _, err := ConstantSeed(strings.Repeat("x", MaxTagLen+1)); err == nil {
		t.Error("tag longer than the limit must be rejected")
	}
}

func TestMustConstantSeed_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on oversized tag")
		}
	}()
	MustConstantSeed(strings.Repeat("x", MaxTagLen+1))
}

func TestVerify(t *testing.T) {
	program := testKey("program")
	other := testKey("other_program")
	seed := AccountSeed(testKey("definition"))

	addr := Derive(program, seed)
	if !Verify(program, seed, addr) {
		t.Error("Verify must accept the derived address")
	}
	if Verify(other, seed, addr) {
		t.Error("Verify must reject a different program")
	}
	if Verify(program, MustConstantSeed("something_else"), addr) {
		t.Error("Verify must reject a different seed")
	}
	if Verify(program, seed, testKey("forged")) {
		t.Error("Verify must reject a forged address")
	}
}
