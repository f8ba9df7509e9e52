package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minutemind/common"
	"minutemind/config"
	"minutemind/types"
)

// SaveMetadata records one completed render so the catalog can find it.
// Local mode appends to the videos.json index; cloud mode writes one
// metadata-prefixed object per video.
func (s *Store) SaveMetadata(ctx context.Context, meta types.VideoMetadata) error {
	if s.cloud != nil {
		payload, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		client, err := s.client(ctx)
		if err != nil {
			return err
		}
		key := s.cloud.objectKey(config.MetadataPrefix + meta.VideoID + ".json")
		if err := client.Put(ctx, s.cloud.bucket, key, payload, "application/json"); err != nil {
			return fmt.Errorf("upload metadata %s: %w", key, err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.readLocalIndex()
	records = append(records, meta)
	return s.writeLocalIndex(records)
}

// ListMetadata returns every parseable video record from the active render
// backend. Malformed entries are skipped, not fatal. Ordering is up to the
// caller.
func (s *Store) ListMetadata(ctx context.Context) ([]types.VideoMetadata, error) {
	if s.cloud == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.readLocalIndex(), nil
	}

	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := client.List(ctx, s.cloud.bucket, s.cloud.objectKey(config.MetadataPrefix))
	if err != nil {
		return nil, fmt.Errorf("list metadata objects: %w", err)
	}

	var records []types.VideoMetadata
	for _, key := range keys {
		payload, err := client.Get(ctx, s.cloud.bucket, key)
		if err != nil {
			log.Printf("[storage] skipping unreadable metadata object %s: %v", key, err)
			continue
		}
		meta, ok := decodeMetadata(payload)
		if !ok {
			log.Printf("[storage] skipping malformed metadata object %s", key)
			continue
		}
		records = append(records, meta)
	}
	return records, nil
}

// DeleteVideo removes a render and its metadata record. Unknown ids are a
// no-op.
func (s *Store) DeleteVideo(ctx context.Context, videoID string) error {
	if s.cloud != nil {
		return s.deleteCloudVideo(ctx, videoID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.readLocalIndex()
	kept := records[:0]
	var removed *types.VideoMetadata
	for i := range records {
		if records[i].VideoID == videoID {
			removed = &records[i]
			continue
		}
		kept = append(kept, records[i])
	}
	if removed == nil {
		return nil
	}
	if removed.StoragePath != "" {
		if err := os.Remove(s.ResolveURL(removed.StoragePath)); err != nil && !os.IsNotExist(err) {
			log.Printf("[storage] could not remove video payload for %s: %v", videoID, err)
		}
	}
	return s.writeLocalIndex(kept)
}

func (s *Store) deleteCloudVideo(ctx context.Context, videoID string) error {
	client, err := s.client(ctx)
	if err != nil {
		return err
	}
	metaKey := s.cloud.objectKey(config.MetadataPrefix + videoID + ".json")
	payload, err := client.Get(ctx, s.cloud.bucket, metaKey)
	if err != nil {
		if common.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("fetch metadata %s: %w", metaKey, err)
	}

	var meta types.VideoMetadata
	if err := json.Unmarshal(payload, &meta); err == nil && meta.StoragePath != "" {
		basename := meta.StoragePath[strings.LastIndex(meta.StoragePath, "/")+1:]
		if err := client.Delete(ctx, s.cloud.bucket, s.cloud.objectKey(basename)); err != nil {
			return fmt.Errorf("delete video object: %w", err)
		}
	}
	if err := client.Delete(ctx, s.cloud.bucket, metaKey); err != nil {
		return fmt.Errorf("delete metadata object: %w", err)
	}
	return nil
}

// readLocalIndex loads videos.json, tolerating a missing or malformed file
// and skipping malformed entries. Caller must hold mu.
func (s *Store) readLocalIndex() []types.VideoMetadata {
	path := filepath.Join(s.settings.MediaRoot, config.VideoIndexFile)
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil
	}

	records := make([]types.VideoMetadata, 0, len(raw))
	for _, entry := range raw {
		if meta, ok := decodeMetadata(entry); ok {
			records = append(records, meta)
		}
	}
	return records
}

// decodeMetadata parses one metadata record. A record with an unparseable
// created_at is kept with a zero timestamp so it still lists (sorted last)
// instead of disappearing; anything else malformed is dropped.
func decodeMetadata(payload []byte) (types.VideoMetadata, bool) {
	var meta types.VideoMetadata
	if err := json.Unmarshal(payload, &meta); err == nil && meta.VideoID != "" {
		return meta, true
	}

	var loose struct {
		types.VideoMetadata
		CreatedAt json.RawMessage `json:"created_at"`
	}
	if err := json.Unmarshal(payload, &loose); err != nil || loose.VideoMetadata.VideoID == "" {
		return types.VideoMetadata{}, false
	}
	meta = loose.VideoMetadata
	meta.CreatedAt = time.Time{}
	return meta, true
}

// writeLocalIndex persists the index. Caller must hold mu.
func (s *Store) writeLocalIndex(records []types.VideoMetadata) error {
	root, err := s.ensureMediaRoot()
	if err != nil {
		return err
	}
	if records == nil {
		records = []types.VideoMetadata{}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal video index: %w", err)
	}
	return os.WriteFile(filepath.Join(root, config.VideoIndexFile), payload, 0o644)
}
