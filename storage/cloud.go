package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// cloudConfig is the parsed form of an S3 storage base.
type cloudConfig struct {
	bucket     string
	prefix     string
	publicHost string
}

// parseCloudConfig decides the render backend from the storage base.
// Returns nil for a plain local base, and an error for a cloud base that
// is missing its bucket segment.
func parseCloudConfig(base string) (*cloudConfig, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, nil
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse storage base: %w", err)
	}

	switch {
	case parsed.Scheme == "s3":
		if parsed.Host == "" {
			return nil, fmt.Errorf("s3:// storage base must include a bucket name")
		}
		return &cloudConfig{
			bucket:     parsed.Host,
			prefix:     strings.Trim(parsed.Path, "/"),
			publicHost: "https://s3.amazonaws.com",
		}, nil

	case (parsed.Scheme == "http" || parsed.Scheme == "https") && strings.HasSuffix(parsed.Host, "amazonaws.com"):
		parts := splitPath(parsed.Path)
		if len(parts) == 0 {
			return nil, fmt.Errorf("storage base %q must include the bucket path, e.g. https://s3.amazonaws.com/<bucket>", base)
		}
		return &cloudConfig{
			bucket:     parts[0],
			prefix:     strings.Join(parts[1:], "/"),
			publicHost: parsed.Scheme + "://" + parsed.Host,
		}, nil
	}

	return nil, nil
}

// objectKey builds the bucket key for a filename under the configured prefix.
func (c *cloudConfig) objectKey(filename string) string {
	if c.prefix == "" {
		return filename
	}
	return c.prefix + "/" + filename
}

// publicURL builds the deterministic host/bucket/prefix/filename form.
func (c *cloudConfig) publicURL(filename string) string {
	segments := []string{strings.TrimRight(c.publicHost, "/"), c.bucket}
	if c.prefix != "" {
		segments = append(segments, c.prefix)
	}
	segments = append(segments, filename)
	return strings.Join(segments, "/")
}

func splitPath(path string) []string {
	var parts []string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

func contentTypeFor(suffix string) string {
	switch strings.ToLower(suffix) {
	case ".mp4":
		return "video/mp4"
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}
