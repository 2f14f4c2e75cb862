package badger

import (
	"bytes"
	"context"

	"github.com/chorusqa/chorus/core"
	"github.com/chorusqa/chorus/storage"
	"github.com/dgraph-io/badger/v4"
)

// ContentRepository implements storage.ContentRepository for BadgerDB.
type ContentRepository struct {
	backend *Backend
}

var _ storage.ContentRepository = (*ContentRepository)(nil)

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(backend *Backend) (*ContentRepository, error) {
	return &ContentRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *ContentRepository) Close() error {
	return nil
}

// AddItems adds one or more content items to storage.
func (r *ContentRepository) AddItems(ctx context.Context, items ...*core.ContentItem) ([]*core.ContentItem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			if err := core.ValidateContentItem(item); err != nil {
				return err
			}
			if item.Id == 0 {
				item.Id = core.IDFromContent(item.Source + "\x00" + item.Text)
			}

			// Store primary record
			key := makeItemKey(item.Source, item.Id)
			value := storage.MarshalContentItem(item)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update timestamp index
			dateKey := makeItemDateKey(item.Source, item.Timestamp, item.Id)
			if err := tx.Set(dateKey, storage.MarshalID(item.Id)); err != nil {
				return err
			}

			// Update reverse-link index
			for _, target := range item.LinkedIds {
				linkKey := makeItemLinkKey(item.Source, target, item.Id)
				if err := tx.Set(linkKey, storage.MarshalID(item.Id)); err != nil {
					return err
				}
			}

			// Mark the source as populated
			if err := tx.Set(makeSourceMarkerKey(item.Source), []byte{1}); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// GetItem retrieves a single content item by source and ID.
func (r *ContentRepository) GetItem(ctx context.Context, source string, id core.ID) (*core.ContentItem, error) {
	var result *core.ContentItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readItem(tx, makeItemKey(source, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetItems retrieves all items for a source, ordered by timestamp ascending.
func (r *ContentRepository) GetItems(ctx context.Context, source string) ([]*core.ContentItem, error) {
	var results []*core.ContentItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeItemDateScanPrefix(source)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item, err := readIndexedItem(tx, iter.Item(), source)
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetRecentItems retrieves the N most recent items for a source,
// ordered by timestamp ascending.
func (r *ContentRepository) GetRecentItems(ctx context.Context, source string, limit int) ([]*core.ContentItem, error) {
	var results []*core.ContentItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeItemDateScanPrefix(source)

		// Reverse iterator starting past the last possible key for this source
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := append(append([]byte{}, prefix...), 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if !bytes.HasPrefix(key, prefix) {
				break
			}
			item, err := readIndexedItem(tx, iter.Item(), source)
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Reverse iteration yields newest first; flip to timestamp ascending.
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// GetLinkedItems performs one hop of link resolution: items the given
// item links to, plus items linking back to it. Missing targets are skipped.
func (r *ContentRepository) GetLinkedItems(ctx context.Context, source string, id core.ID) ([]*core.ContentItem, error) {
	var results []*core.ContentItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		root, err := readItem(tx, makeItemKey(source, id))
		if err != nil {
			return err
		}
		if root == nil {
			return storage.ErrNotFound
		}

		seen := map[core.ID]bool{id: true}

		// Outgoing links
		for _, target := range root.LinkedIds {
			if seen[target] {
				continue
			}
			seen[target] = true
			item, err := readItem(tx, makeItemKey(source, target))
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
		}

		// Incoming links via the reverse index
		scanPrefix := makeItemLinkScanPrefix(source, id)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scanPrefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var linkedID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				linkedID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			if seen[linkedID] {
				continue
			}
			seen[linkedID] = true
			item, err := readItem(tx, makeItemKey(source, linkedID))
			if err != nil {
				return err
			}
			if item != nil {
				results = append(results, item)
			}
		}
		return nil
	}, false)
	return results, err
}

// Sources lists every source that has at least one stored item.
func (r *ContentRepository) Sources(ctx context.Context) ([]string, error) {
	var sources []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeSourceMarkerScanPrefix()
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			sources = append(sources, string(key[len(prefix):]))
		}
		return nil
	}, false)
	return sources, err
}

// Helper methods

// readItem reads a content item from the transaction.
// Returns nil without error when the key is absent.
func readItem(tx *badger.Txn, key []byte) (*core.ContentItem, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ContentItem
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalContentItem(val)
		return unmarshalErr
	})
	return record, err
}

// readIndexedItem resolves a timestamp-index entry to its full record.
func readIndexedItem(tx *badger.Txn, indexItem *badger.Item, source string) (*core.ContentItem, error) {
	var id core.ID
	if err := indexItem.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}
	return readItem(tx, makeItemKey(source, id))
}
