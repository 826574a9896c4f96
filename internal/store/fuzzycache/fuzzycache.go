// Package fuzzycache holds a cached snapshot of (name, qualified name,
// signature) as the source for the FTS fuzzy fallback. It is backed by
// github.com/dgraph-io/badger/v4 running in in-memory
// mode (badger.DefaultOptions("").WithInMemory(true)) so the snapshot
// never touches disk, plus a small github.com/hashicorp/golang-lru/v2
// front cache for the symbol IDs repeated lookups actually hit.
package fuzzycache

import (
	"encoding/json"

	badger "github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solanumlabs/codelens/internal/store/fuzzy"
)

// defaultLRUSize bounds the hot front-cache; the badger store behind it
// holds the full snapshot regardless.
const defaultLRUSize = 512

// Cache is the in-memory snapshot store. Safe for concurrent use: badger
// serializes its own transactions and the LRU is internally locked.
type Cache struct {
	db  *badger.DB
	hot *lru.Cache[string, fuzzy.Candidate]
}

// New opens a fresh in-memory badger instance. There is nothing to
// recover across process restarts by design — this cache is rebuilt from
// the store's symbols table on first use.
func New() (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	hot, err := lru.New[string, fuzzy.Candidate](defaultLRUSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db, hot: hot}, nil
}

// Close releases the badger instance.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Rebuild replaces the entire snapshot in one badger transaction, used
// after a full reindex or whenever the caller wants the fuzzy fallback
// to see fresh data.
func (c *Cache) Rebuild(candidates []fuzzy.Candidate) error {
	c.hot.Purge()
	return c.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for _, cand := range candidates {
			v, err := json.Marshal(cand)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(cand.SymbolID), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns one cached candidate by symbol ID, checking the LRU front
// cache before falling back to badger.
func (c *Cache) Get(symbolID string) (fuzzy.Candidate, bool) {
	if v, ok := c.hot.Get(symbolID); ok {
		return v, true
	}
	var cand fuzzy.Candidate
	found := false
	c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(symbolID))
		if err != nil {
			return nil
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &cand); err != nil {
				return err
			}
			found = true
			return nil
		})
	})
	if found {
		c.hot.Add(symbolID, cand)
	}
	return cand, found
}

// All returns every cached candidate, the shape the fuzzy fallback scans
// linearly over. The fuzzy search has no index of its own; it trades an
// O(n) scan of this snapshot for the simplicity of never needing its
// own search structure.
func (c *Cache) All() ([]fuzzy.Candidate, error) {
	var out []fuzzy.Candidate
	err := c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var cand fuzzy.Candidate
				if err := json.Unmarshal(val, &cand); err != nil {
					return err
				}
				out = append(out, cand)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}
