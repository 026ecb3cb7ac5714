package cachestore

import (
	"encoding/json"

	badger "github.com/dgraph-io/badger/v4"
)

var (
	badgerEntryPrefix = []byte("e:")
	badgerMetaPrefix  = []byte("m:")
)

// BadgerBackend stores cache entries in an embedded badger database
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend opens (or creates) the badger database at path
func NewBadgerBackend(path string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerBackend{db: db}, nil
}

func badgerEntryKey(key string) []byte {
	return append(append([]byte{}, badgerEntryPrefix...), key...)
}

func badgerMetaKey(key string) []byte {
	return append(append([]byte{}, badgerMetaPrefix...), key...)
}

// LoadAll returns every stored entry
func (b *BadgerBackend) LoadAll() ([]*Entry, error) {
	var entries []*Entry

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerEntryPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry Entry
				if err := json.Unmarshal(val, &entry); err != nil {
					return err
				}
				entries = append(entries, &entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Get retrieves one entry by key
func (b *BadgerBackend) Get(key string) (*Entry, bool, error) {
	var entry *Entry

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerEntryKey(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			var decoded Entry
			if err := json.Unmarshal(val, &decoded); err != nil {
				return err
			}
			entry = &decoded
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// Put stores or replaces one entry
func (b *BadgerBackend) Put(entry *Entry) error {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerEntryKey(entry.Key), encoded)
	})
}

// Delete removes one entry
func (b *BadgerBackend) Delete(key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerEntryKey(key))
	})
}

// Clear removes all entries, keeping metadata
func (b *BadgerBackend) Clear() error {
	return b.db.DropPrefix(badgerEntryPrefix)
}

// GetMeta retrieves a metadata value
func (b *BadgerBackend) GetMeta(key string) ([]byte, bool, error) {
	var value []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerMetaKey(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			value = append([]byte{}, val...)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// PutMeta stores a metadata value
func (b *BadgerBackend) PutMeta(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerMetaKey(key), value)
	})
}

// Close closes the underlying database
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
