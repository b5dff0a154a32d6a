// Package pda implements program-derived address derivation.
//
// A PDA binds an account to a program without a private key: the
// account id is a deterministic hash of the program id and a fixed
// 32-byte seed, so only that program can legitimately claim delegated
// authority over it.
package pda

import (
	"crypto/sha256"
	"fmt"

	"github.com/zledger/treasury/pkg/types"
)

// Marker is the domain-separation string appended during derivation.
const Marker = "ProgramDerivedAddress"

// MaxTagLen is the maximum length of a constant seed tag.
const MaxTagLen = 32

// Derive computes the program-derived address for (programID, seed).
//
// Formula: SHA256(program_id || seed || Marker). The derivation is
// pure and deterministic; distinct seeds under the same program
// collide only with negligible probability.
func Derive(programID types.Pubkey, seed types.Seed) types.Pubkey {
	h := sha256.New()
	h.Write(programID[:])
	h.Write(seed[:])
	h.Write([]byte(Marker))

	var pda types.Pubkey
	copy(pda[:], h.Sum(nil))
	return pda
}

// ConstantSeed builds a seed from a short ASCII tag, right-padded
// with zero bytes to 32 bytes. Tags longer than MaxTagLen are
// rejected.
func ConstantSeed(tag string) (types.Seed, error) {
	if len(tag) > MaxTagLen {
		return types.Seed{}, fmt.Errorf("seed tag too long: %d bytes, max %d", len(tag), MaxTagLen)
	}
	var seed types.Seed
	copy(seed[:], tag)
	return seed, nil
}

// MustConstantSeed builds a constant seed, panicking if the tag is
// too long. Intended for package-level seed constants.
func MustConstantSeed(tag string) types.Seed {
	seed, err := ConstantSeed(tag)
	if err != nil {
		panic(err)
	}
	return seed
}

// AccountSeed builds a seed from another account's raw 32-byte id.
// Used to bind a derived account to the account it refers to, e.g. a
// vault holding bound to its token definition.
func AccountSeed(id types.Pubkey) types.Seed {
	return types.Seed(id)
}

// Verify reports whether accountID is the PDA of (programID, seed).
// Hosts use this to check that a delegated authorization claim is
// legitimate before honoring it.
func Verify(programID types.Pubkey, seed types.Seed, accountID types.Pubkey) bool {
	return Derive(programID, seed) == accountID
}
