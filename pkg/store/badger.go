package store

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/zledger/treasury/pkg/types"
)

const (
	// recordKeyPrefix is the prefix for account keys in BadgerDB.
	recordKeyPrefix = "account:"
)

// BadgerStore is a persistent implementation of Store using BadgerDB.
type BadgerStore struct {
	db    *badger.DB
	count atomic.Uint64
}

// NewBadgerStore creates a new BadgerDB-backed store at the given
// path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &BadgerStore{db: db}

	count, err := s.countRecords()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	s.count.Store(count)

	return s, nil
}

// makeRecordKey creates the key for an account.
func makeRecordKey(id types.Pubkey) []byte {
	key := make([]byte, len(recordKeyPrefix)+32)
	copy(key, recordKeyPrefix)
	copy(key[len(recordKeyPrefix):], id[:])
	return key
}

// Get retrieves a record by account id.
// A missing account returns the zero Record and no error.
func (s *BadgerStore) Get(id types.Pubkey) (Record, error) {
	key := makeRecordKey(id)
	var record Record

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			var deserErr error
			record, deserErr = DeserializeRecord(val)
			return deserErr
		})
	})

	if err != nil {
		return Record{}, fmt.Errorf("failed to get account: %w", err)
	}

	return record, nil
}

// Set stores a record.
func (s *BadgerStore) Set(id types.Pubkey, record Record) error {
	return s.SetBatch([]Entry{{ID: id, Record: record}})
}

// SetBatch stores all entries in one badger transaction, so either
// every entry commits or none does.
func (s *BadgerStore) SetBatch(entries []Entry) error {
	var created uint64

	err := s.db.Update(func(txn *badger.Txn) error {
		created = 0
		for _, e := range entries {
			key := makeRecordKey(e.ID)

			_, err := txn.Get(key)
			isNew := err == badger.ErrKeyNotFound
			if err != nil && err != badger.ErrKeyNotFound {
				return err
			}

			if err := txn.Set(key, SerializeRecord(e.Record)); err != nil {
				return err
			}
			if isNew {
				created++
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to set accounts: %w", err)
	}

	s.count.Add(created)
	return nil
}

// Delete removes a record.
func (s *BadgerStore) Delete(id types.Pubkey) error {
	key := makeRecordKey(id)
	var deleted bool

	err := s.db.Update(func(txn *badger.Txn) error {
		deleted = false
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil // Already deleted
		}
		if err != nil {
			return err
		}

		if err := txn.Delete(key); err != nil {
			return err
		}
		deleted = true
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	// Adjust the count only after the transaction committed, the way
	// SetBatch handles increments.
	if deleted {
		s.count.Add(^uint64(0)) // Decrement by 1
	}
	return nil
}

// Has returns true if the account exists.
func (s *BadgerStore) Has(id types.Pubkey) bool {
	key := makeRecordKey(id)
	var exists bool

	s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		exists = err == nil
		return nil
	})

	return exists
}

// Count returns the total number of stored accounts.
func (s *BadgerStore) Count() uint64 {
	return s.count.Load()
}

// ForEach visits every stored entry.
func (s *BadgerStore) ForEach(fn func(Entry) error) error {
	prefix := []byte(recordKeyPrefix)

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var id types.Pubkey
			copy(id[:], item.Key()[len(recordKeyPrefix):])

			var record Record
			err := item.Value(func(val []byte) error {
				var deserErr error
				record, deserErr = DeserializeRecord(val)
				return deserErr
			})
			if err != nil {
				return err
			}

			if err := fn(Entry{ID: id, Record: record}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// countRecords counts all accounts in the database.
func (s *BadgerStore) countRecords() (uint64, error) {
	var count uint64
	prefix := []byte(recordKeyPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Only need keys for counting
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// Ensure BadgerStore implements Store.
var _ Store = (*BadgerStore)(nil)
