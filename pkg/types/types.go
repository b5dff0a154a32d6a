// Package types provides the core ledger data types for the treasury
// execution model: 32-byte identifiers, accounts, execution metadata
// and chained-call descriptors.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// Pubkey is a 32-byte account or program identifier.
type Pubkey [32]byte

// ZeroPubkey is an all-zero pubkey.
var ZeroPubkey Pubkey

// PubkeyFromBytes creates a Pubkey from a byte slice.
func PubkeyFromBytes(b []byte) (Pubkey, error) {
	if len(b) != 32 {
		return Pubkey{}, fmt.Errorf("pubkey must be 32 bytes, got %d", len(b))
	}
	var p Pubkey
	copy(p[:], b)
	return p, nil
}

// PubkeyFromBase58 decodes a base58 string into a Pubkey.
func PubkeyFromBase58(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("invalid base58: %w", err)
	}
	return PubkeyFromBytes(b)
}

// MustPubkeyFromBase58 decodes a base58 string, panicking on error.
// Intended for package-level constants.
func MustPubkeyFromBase58(s string) Pubkey {
	p, err := PubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns the pubkey as a byte slice.
func (p Pubkey) Bytes() []byte {
	return p[:]
}

// String returns the base58 representation.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Hex returns the hex representation.
func (p Pubkey) Hex() string {
	return hex.EncodeToString(p[:])
}

// IsZero returns true if the pubkey is all zeros.
func (p Pubkey) IsZero() bool {
	return p == ZeroPubkey
}

// Seed is a fixed 32-byte value used for program-derived address
// derivation. See the pda package for constructors.
type Seed [32]byte

// Bytes returns the seed as a byte slice.
func (s Seed) Bytes() []byte {
	return s[:]
}

// Hash represents a 32-byte SHA256 hash.
type Hash [32]byte

// ZeroHash is an all-zero hash.
var ZeroHash Hash

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// String returns the base58 representation.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// SHA256 computes the SHA256 hash of data.
func SHA256(data []byte) Hash {
	return sha256.Sum256(data)
}

// SHA256Multi computes the SHA256 hash of multiple byte slices.
func SHA256Multi(data ...[]byte) Hash {
	h := sha256.New()
	for _, d := range data {
		h.Write(d)
	}
	var result Hash
	copy(result[:], h.Sum(nil))
	return result
}
