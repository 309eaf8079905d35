// Package store persists entity IDs and archived edits in Badger.
//
// Keys:
//
//	id/<kind>/<key>  -> entity ID
//	edit/<cid>       -> s2-compressed edit document
package store

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

var (
	idPrefix   = []byte("id/")
	editPrefix = []byte("edit/")
)

// Store wraps a Badger database. It satisfies registry.Store.
type Store struct {
	db  *badger.DB
	cfg *Config
}

// Open validates cfg and opens the database.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: store config is nil", errors.ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	db, err := badger.Open(buildBadgerOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", cfg.DataDir, err)
	}
	return &Store{db: db, cfg: cfg}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func idKey(kind, key string) []byte {
	return []byte("id/" + kind + "/" + key)
}

func (s *Store) withReadTxn(fn func(txn *badger.Txn) error) error {
	return s.db.View(fn)
}

func (s *Store) withWriteTxn(fn func(txn *badger.Txn) error) error {
	if s.cfg.ReadOnly {
		return fmt.Errorf("%w: store is read-only", errors.ErrInvalidInput)
	}
	return s.db.Update(fn)
}

func (s *Store) GetID(kind, key string) (string, error) {
	var id string
	err := s.withReadTxn(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(kind, key))
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		id = string(v)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return "", fmt.Errorf("%w: %s %s", errors.ErrNotFound, kind, key)
	}
	if err != nil {
		return "", fmt.Errorf("get id %s/%s: %w", kind, key, err)
	}
	return id, nil
}

func (s *Store) PutID(kind, key, id string) error {
	if kind == "" || key == "" {
		return fmt.Errorf("%w: kind and key are required", errors.ErrInvalidInput)
	}
	return s.withWriteTxn(func(txn *badger.Txn) error {
		return txn.Set(idKey(kind, key), []byte(id))
	})
}

// IDs returns every key/ID pair registered under kind.
func (s *Store) IDs(kind string) (map[string]string, error) {
	prefix := idKey(kind, "")
	out := make(map[string]string)
	err := s.withReadTxn(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[string(item.Key()[len(prefix):])] = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list ids %s: %w", kind, err)
	}
	return out, nil
}

// Kinds lists every kind with at least one registered ID.
func (s *Store) Kinds() ([]string, error) {
	seen := make(map[string]struct{})
	err := s.withReadTxn(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: idPrefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			rest := it.Item().Key()[len(idPrefix):]
			if i := bytes.IndexByte(rest, '/'); i > 0 {
				seen[string(rest[:i])] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
