package badger

import (
	"context"

	"github.com/chorusqa/chorus/core"
	"github.com/chorusqa/chorus/storage"
	"github.com/dgraph-io/badger/v4"
)

// DiscussionRepository implements storage.DiscussionRepository for BadgerDB.
type DiscussionRepository struct {
	backend *Backend
}

var _ storage.DiscussionRepository = (*DiscussionRepository)(nil)

// NewDiscussionRepository creates a new DiscussionRepository.
func NewDiscussionRepository(backend *Backend) (*DiscussionRepository, error) {
	return &DiscussionRepository{backend: backend}, nil
}

// Close is a no-op; the backend owns the database handle.
func (r *DiscussionRepository) Close() error {
	return nil
}

// AddDiscussionGroups adds discussion groups keyed by source and anchor ID.
func (r *DiscussionRepository) AddDiscussionGroups(ctx context.Context, groups ...*core.DiscussionGroup) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, group := range groups {
			if err := core.ValidateDiscussionGroup(group); err != nil {
				return err
			}
			key := makeGroupKey(group.Source, group.AnchorId)
			value := storage.MarshalDiscussionGroup(group)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDiscussionGroups retrieves discussion groups for a source, ordered
// by anchor ID. When driftOnly is true, only groups with topic drift
// are returned.
func (r *DiscussionRepository) GetDiscussionGroups(ctx context.Context, source string, driftOnly bool) ([]*core.DiscussionGroup, error) {
	var results []*core.DiscussionGroup
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeGroupScanPrefix(source)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var group *core.DiscussionGroup
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				group, err = storage.UnmarshalDiscussionGroup(val)
				return err
			}); err != nil {
				return err
			}
			if group == nil {
				continue
			}
			if driftOnly && !group.HasDrift {
				continue
			}
			results = append(results, group)
		}
		return nil
	}, false)
	return results, err
}
