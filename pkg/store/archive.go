package store

import (
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/s2"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

// ArchivedEdit describes one entry of the edit archive.
type ArchivedEdit struct {
	CID  string `json:"cid"`
	Size int    `json:"size"` // compressed bytes
}

func editKey(cid string) []byte {
	return append(append([]byte{}, editPrefix...), cid...)
}

// PutEdit stores the encoded edit published under cid, s2-compressed.
func (s *Store) PutEdit(cid string, data []byte) error {
	if cid == "" {
		return fmt.Errorf("%w: cid is required", errors.ErrInvalidInput)
	}
	compressed := s2.Encode(nil, data)
	return s.withWriteTxn(func(txn *badger.Txn) error {
		return txn.Set(editKey(cid), compressed)
	})
}

// GetEdit returns the decompressed edit stored under cid.
func (s *Store) GetEdit(cid string) ([]byte, error) {
	var data []byte
	err := s.withReadTxn(func(txn *badger.Txn) error {
		item, err := txn.Get(editKey(cid))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: edit %s", errors.ErrNotFound, cid)
	}
	if err != nil {
		return nil, fmt.Errorf("get edit %s: %w", cid, err)
	}

	decompressed, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decompress edit %s: %w", cid, err)
	}
	if decompressed == nil {
		decompressed = []byte{}
	}
	return decompressed, nil
}

// Edits lists the archive ordered by CID.
func (s *Store) Edits() ([]ArchivedEdit, error) {
	var out []ArchivedEdit
	err := s.withReadTxn(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: editPrefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			out = append(out, ArchivedEdit{
				CID:  string(item.Key()[len(editPrefix):]),
				Size: int(item.ValueSize()),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list edits: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CID < out[j].CID })
	return out, nil
}
