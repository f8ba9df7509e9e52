// Package storage maps logical artifact names to durable bytes and back.
//
// Two backends exist: a local filesystem root served over HTTP, and an S3
// bucket. The backend for rendered videos and their metadata records is
// selected once from the configured storage base; audio and image artifacts
// always use the local backend so the compositor can re-ingest them from
// disk.
package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"minutemind/common"
	"minutemind/config"
	"minutemind/types"
)

// s3Client is the slice of common.S3 the cloud backend uses. Tests swap in
// a fake.
type s3Client interface {
	Put(ctx context.Context, bucket, key string, payload []byte, contentType string) error
	SetPublicRead(ctx context.Context, bucket, key string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Store is the storage adapter. Safe for concurrent use; the only shared
// mutable state is the local metadata index, guarded by mu.
type Store struct {
	settings config.Settings
	cloud    *cloudConfig // nil when the base is a plain local HTTP URL

	mu sync.Mutex // guards the local video index file

	s3once sync.Once
	s3     s3Client
	s3err  error
}

// New builds a Store and eagerly validates the storage base, so a
// misconfigured cloud URL fails at startup instead of at first upload.
func New(settings config.Settings) (*Store, error) {
	cloud, err := parseCloudConfig(settings.StorageBase)
	if err != nil {
		return nil, err
	}
	return &Store{settings: settings, cloud: cloud}, nil
}

// CloudEnabled reports whether rendered videos go to the S3 backend.
func (s *Store) CloudEnabled() bool { return s.cloud != nil }

// SaveBytes persists payload under {name}{suffix} on the local backend and
// returns its public URL and filesystem path. Writing the same name again
// overwrites in place.
func (s *Store) SaveBytes(ctx context.Context, name string, payload []byte, suffix string) (types.StoredMedia, error) {
	root, err := s.ensureMediaRoot()
	if err != nil {
		return types.StoredMedia{}, err
	}
	filename := name + suffix
	path := filepath.Join(root, filename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return types.StoredMedia{}, fmt.Errorf("write %s: %w", filename, err)
	}
	return types.StoredMedia{URL: s.localURL(filename), Path: path}, nil
}

// SaveRender persists a rendered video under {name}.mp4 on the configured
// render backend.
func (s *Store) SaveRender(ctx context.Context, name string, payload []byte) (types.StoredMedia, error) {
	if s.cloud == nil {
		return s.SaveBytes(ctx, name, payload, ".mp4")
	}

	filename := name + ".mp4"
	client, err := s.client(ctx)
	if err != nil {
		return types.StoredMedia{}, err
	}
	key := s.cloud.objectKey(filename)
	if err := client.Put(ctx, s.cloud.bucket, key, payload, contentTypeFor(".mp4")); err != nil {
		return types.StoredMedia{}, fmt.Errorf("upload %s: %w", key, err)
	}
	// Publicity is advisory: the upload already succeeded.
	if err := client.SetPublicRead(ctx, s.cloud.bucket, key); err != nil {
		log.Printf("[storage] public-read ACL skipped for %s: %v", key, err)
	}
	return types.StoredMedia{
		URL:  s.cloud.publicURL(filename),
		Path: fmt.Sprintf("s3://%s/%s", s.cloud.bucket, key),
	}, nil
}

// ResolveURL converts a local-backend URL back into a filesystem path.
// The mapping is basename-only: generated filenames are unique and flat,
// so any directory structure in the URL is discarded.
func (s *Store) ResolveURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	idx := strings.LastIndex(trimmed, "/")
	basename := trimmed
	if idx >= 0 {
		basename = trimmed[idx+1:]
	}
	return filepath.Join(s.settings.MediaRoot, basename)
}

func (s *Store) ensureMediaRoot() (string, error) {
	root := s.settings.MediaRoot
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create media root: %w", err)
	}
	return root, nil
}

func (s *Store) localURL(filename string) string {
	return strings.TrimRight(s.settings.StorageBase, "/") + "/" + filename
}

func (s *Store) client(ctx context.Context) (s3Client, error) {
	s.s3once.Do(func() {
		if s.s3 != nil {
			return
		}
		s.s3, s.s3err = common.NewS3(ctx, common.S3Config{
			Region:  s.settings.AWSRegion,
			Profile: s.settings.AWSProfile,
		})
	})
	return s.s3, s.s3err
}
