// Package catalog lists and removes rendered video records through the
// storage abstraction.
package catalog

import (
	"context"
	"sort"

	"minutemind/storage"
	"minutemind/types"
)

// Catalog exposes the discoverable render records.
type Catalog struct {
	store *storage.Store
}

// New builds a Catalog over the given store.
func New(store *storage.Store) *Catalog {
	return &Catalog{store: store}
}

// List returns every video record, newest first. Records without a usable
// created_at sort last.
func (c *Catalog) List(ctx context.Context) ([]types.VideoMetadata, error) {
	records, err := c.store.ListMetadata(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []types.VideoMetadata{}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes a video and its metadata record. Deleting an unknown id
// is not an error.
func (c *Catalog) Delete(ctx context.Context, videoID string) error {
	return c.store.DeleteVideo(ctx, videoID)
}
