package store

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/zledger/treasury/pkg/types"
)

const (
	// merkleArity is the number of children per node in the Merkle tree.
	merkleArity = 16
)

// StateRoot computes a commitment to the full account state: a
// 16-ary Merkle tree over per-record blake3 hashes, with records
// sorted by account id. Two stores with the same contents produce the
// same root regardless of insertion order.
func StateRoot(s Store) (types.Hash, error) {
	var entries []Entry
	err := s.ForEach(func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return types.ZeroHash, err
	}
	if len(entries) == 0 {
		return types.ZeroHash, nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].ID[:], entries[j].ID[:]) < 0
	})

	hashes := make([]types.Hash, len(entries))
	for i, e := range entries {
		hashes[i] = hashRecord(e.ID, e.Record)
	}

	return computeMerkleRoot(hashes), nil
}

// hashRecord computes the leaf hash of one record.
// Format: blake3(id || owner || data_len || data)
func hashRecord(id types.Pubkey, record Record) types.Hash {
	h := blake3.New()
	h.Write(id[:])
	h.Write(record.Owner[:])

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(record.Data)))
	h.Write(lenBuf[:])
	h.Write(record.Data)

	var result types.Hash
	copy(result[:], h.Sum(nil))
	return result
}

// computeMerkleRoot computes the root of a 16-ary Merkle tree.
func computeMerkleRoot(hashes []types.Hash) types.Hash {
	if len(hashes) == 0 {
		return types.ZeroHash
	}

	// Process level by level until we have a single root
	for len(hashes) > 1 {
		hashes = computeNextLevel(hashes)
	}

	return hashes[0]
}

// computeNextLevel computes the next level of the 16-ary Merkle tree.
func computeNextLevel(hashes []types.Hash) []types.Hash {
	numParents := (len(hashes) + merkleArity - 1) / merkleArity
	parents := make([]types.Hash, numParents)

	for i := 0; i < numParents; i++ {
		start := i * merkleArity
		end := start + merkleArity
		if end > len(hashes) {
			end = len(hashes)
		}

		parents[i] = hashChildren(hashes[start:end])
	}

	return parents
}

// hashChildren computes the hash of a group of child nodes.
func hashChildren(children []types.Hash) types.Hash {
	if len(children) == 1 {
		return children[0]
	}

	h := blake3.New()
	for _, child := range children {
		h.Write(child[:])
	}

	var result types.Hash
	copy(result[:], h.Sum(nil))
	return result
}
