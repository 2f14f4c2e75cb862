package storage

import (
	"context"

	"github.com/chorusqa/chorus/core"
)

// ContentRepository provides read and import operations for archived
// content items. The query pipeline only reads; writes happen during
// archive import. Implementations must be thread-safe and support
// concurrent access.
type ContentRepository interface {
	// AddItems adds content items to storage.
	// Items with Id=0 get a deterministic content-based ID.
	// Returns the items with IDs populated.
	AddItems(ctx context.Context, items ...*core.ContentItem) ([]*core.ContentItem, error)

	// GetItem retrieves a single item by source and ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, source string, id core.ID) (*core.ContentItem, error)

	// GetItems retrieves all items for a source, ordered by timestamp ascending.
	GetItems(ctx context.Context, source string) ([]*core.ContentItem, error)

	// GetRecentItems retrieves the N most recent items for a source,
	// ordered by timestamp ascending. Returns up to limit items.
	GetRecentItems(ctx context.Context, source string, limit int) ([]*core.ContentItem, error)

	// GetLinkedItems performs one hop of link resolution for an item:
	// the items it links to (reply/forward/mention) plus the items that
	// link back to it. Missing link targets are skipped, not errors.
	GetLinkedItems(ctx context.Context, source string, id core.ID) ([]*core.ContentItem, error)

	// Sources lists every source that has at least one stored item.
	Sources(ctx context.Context) ([]string, error)

	// Close releases resources held by the repository.
	Close() error
}

// DiscussionRepository provides operations for pre-analyzed discussion
// groups. Groups are produced by an offline analysis job and are
// read-only to the query pipeline.
type DiscussionRepository interface {
	// AddDiscussionGroups adds discussion groups to storage, keyed by
	// their anchor item ID within the source.
	AddDiscussionGroups(ctx context.Context, groups ...*core.DiscussionGroup) error

	// GetDiscussionGroups retrieves discussion groups for a source.
	// When driftOnly is true, only groups with HasDrift set are returned.
	GetDiscussionGroups(ctx context.Context, source string, driftOnly bool) ([]*core.DiscussionGroup, error)

	// Close releases resources held by the repository.
	Close() error
}
