// Package store provides account persistence for the execution
// engine: an in-memory store for tests and a BadgerDB-backed store,
// plus zstd snapshot export/import and a blake3 state root.
package store

import (
	"errors"

	"github.com/zledger/treasury/pkg/types"
)

// ErrInvalidRecordData is returned when a persisted record is malformed.
var ErrInvalidRecordData = errors.New("invalid record data")

// Record is the persisted form of a ledger account: its byte buffer
// plus the program that owns it. A missing account reads back as the
// zero Record with no owner and no data, which is the uninitialized
// sentinel.
type Record struct {
	Owner types.Pubkey
	Data  []byte
}

// Clone creates a deep copy of the record.
func (r Record) Clone() Record {
	clone := Record{Owner: r.Owner}
	if r.Data != nil {
		clone.Data = make([]byte, len(r.Data))
		copy(clone.Data, r.Data)
	}
	return clone
}

// IsUninitialized reports whether the record has never been claimed
// or written.
func (r Record) IsUninitialized() bool {
	if !r.Owner.IsZero() {
		return false
	}
	for _, b := range r.Data {
		if b != 0 {
			return false
		}
	}
	return true
}

// Entry pairs an account id with its record, for batch writes and
// iteration.
type Entry struct {
	ID     types.Pubkey
	Record Record
}

// Store is the interface for account persistence.
type Store interface {
	// Get retrieves a record by account id.
	// A missing account returns the zero Record and no error.
	Get(id types.Pubkey) (Record, error)

	// Set stores a record.
	Set(id types.Pubkey, record Record) error

	// SetBatch stores all entries atomically: either every entry is
	// visible afterwards or none is.
	SetBatch(entries []Entry) error

	// Delete removes a record.
	Delete(id types.Pubkey) error

	// Has returns true if the account exists.
	Has(id types.Pubkey) bool

	// Count returns the total number of stored accounts.
	Count() uint64

	// ForEach visits every stored entry. Iteration stops on the first
	// error, which is returned.
	ForEach(fn func(Entry) error) error

	// Close closes the store.
	Close() error
}
