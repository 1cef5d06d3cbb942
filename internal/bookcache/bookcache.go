// Package bookcache is the Oracle's read-only opening-book collaborator: a
// badger-backed store mapping a position's Polyglot hash to its
// highest-weighted book reply, consulted only to bias which successor the
// dashboard lists first (internal/oracle.Book). Grounded on the teacher's
// internal/book (Polyglot parsing) and internal/storage (badger open/close
// shape), repurposed from in-process preference storage to a pre-built,
// read-only lookup table.
package bookcache

import (
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"

	"github.com/chessgraph/engine/internal/book"
)

// Cache is a read-only handle on a badger database of Polyglot book
// entries, keyed by position hash.
type Cache struct {
	db *badger.DB
}

// Open opens (or creates) the badger database at dir. An empty Cache is a
// valid, permanently-miss Book: cmd/chessgraph treats BookPath == "" as "no
// book" by never calling Open at all.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying badger database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// BestMove implements internal/oracle.Book: the highest-weighted Polyglot
// reply for the position with the given hash, if the cache has one.
func (c *Cache) BestMove(key uint64) (from, to int, ok bool) {
	if c == nil || c.db == nil {
		return 0, 0, false
	}
	var keyBuf [8]byte
	binary.BigEndian.PutUint64(keyBuf[:], key)

	var valBuf [2]byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyBuf[:])
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			copy(valBuf[:], val)
			return nil
		})
	})
	if err != nil {
		return 0, 0, false
	}
	return int(valBuf[0]), int(valBuf[1]), true
}

// Rebuild replaces the cache's contents with the highest-weighted reply
// for every position in a Polyglot book file, for offline population (not
// called from the search hot path).
func Rebuild(dir, polyglotPath string) error {
	b, err := book.LoadPolyglot(polyglotPath)
	if err != nil {
		return err
	}
	c, err := Open(dir)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.db.Update(func(txn *badger.Txn) error {
		for key, entries := range b.Entries() {
			best := entries[0]
			for _, e := range entries[1:] {
				if e.Weight > best.Weight {
					best = e
				}
			}
			var keyBuf [8]byte
			binary.BigEndian.PutUint64(keyBuf[:], key)
			val := []byte{byte(best.Move.From()), byte(best.Move.To())}
			if err := txn.Set(keyBuf[:], val); err != nil {
				return err
			}
		}
		return nil
	})
}
