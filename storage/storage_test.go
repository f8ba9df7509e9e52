package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minutemind/config"
)

func testSettings(t *testing.T) config.Settings {
	t.Helper()
	return config.Settings{
		StorageBase: "http://test/media",
		MediaRoot:   t.TempDir(),
	}
}

func TestSaveBytesRoundTrip(t *testing.T) {
	store, err := New(testSettings(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payload := []byte("narration audio bytes")
	stored, err := store.SaveBytes(context.Background(), "script-1-scene-1", payload, ".wav")
	if err != nil {
		t.Fatalf("SaveBytes: %v", err)
	}

	if stored.URL != "http://test/media/script-1-scene-1.wav" {
		t.Errorf("unexpected URL %q", stored.URL)
	}

	resolved := store.ResolveURL(stored.URL)
	got, err := os.ReadFile(resolved)
	if err != nil {
		t.Fatalf("read resolved path: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("resolved contents do not match saved payload")
	}
}

func TestSaveBytesOverwritesSameName(t *testing.T) {
	store, err := New(testSettings(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if _, err := store.SaveBytes(ctx, "script-1-scene-1", []byte("first"), ".wav"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	stored, err := store.SaveBytes(ctx, "script-1-scene-1", []byte("second"), ".wav")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := os.ReadFile(stored.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("expected overwrite, got %q", got)
	}

	entries, err := os.ReadDir(filepath.Dir(stored.Path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 file after re-save, found %d", len(entries))
	}
}

func TestResolveURLIsBasenameOnly(t *testing.T) {
	settings := testSettings(t)
	store, err := New(settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := store.ResolveURL("http://elsewhere/deeply/nested/path/clip.mp3")
	want := filepath.Join(settings.MediaRoot, "clip.mp3")
	if got != want {
		t.Errorf("ResolveURL = %q, want %q", got, want)
	}
}

func TestSaveRenderLocal(t *testing.T) {
	store, err := New(testSettings(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	stored, err := store.SaveRender(context.Background(), "abc123", []byte("video"))
	if err != nil {
		t.Fatalf("SaveRender: %v", err)
	}
	if !strings.HasSuffix(stored.URL, "/abc123.mp4") {
		t.Errorf("unexpected render URL %q", stored.URL)
	}
	if _, err := os.Stat(stored.Path); err != nil {
		t.Errorf("render payload missing: %v", err)
	}
}

func TestParseCloudConfig(t *testing.T) {
	tests := []struct {
		name       string
		base       string
		wantCloud  bool
		wantErr    bool
		wantBucket string
		wantPrefix string
	}{
		{name: "local http base", base: "http://localhost:8080/media"},
		{name: "empty base", base: ""},
		{name: "s3 scheme", base: "s3://renders/videos", wantCloud: true, wantBucket: "renders", wantPrefix: "videos"},
		{name: "s3 scheme no prefix", base: "s3://renders", wantCloud: true, wantBucket: "renders"},
		{name: "s3 scheme missing bucket", base: "s3://", wantErr: true},
		{name: "https host form", base: "https://s3.amazonaws.com/renders/videos", wantCloud: true, wantBucket: "renders", wantPrefix: "videos"},
		{name: "https host missing bucket", base: "https://s3.amazonaws.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cloud, err := parseCloudConfig(tt.base)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected configuration error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCloudConfig: %v", err)
			}
			if tt.wantCloud != (cloud != nil) {
				t.Fatalf("cloud = %v, want %v", cloud != nil, tt.wantCloud)
			}
			if cloud == nil {
				return
			}
			if cloud.bucket != tt.wantBucket {
				t.Errorf("bucket = %q, want %q", cloud.bucket, tt.wantBucket)
			}
			if cloud.prefix != tt.wantPrefix {
				t.Errorf("prefix = %q, want %q", cloud.prefix, tt.wantPrefix)
			}
		})
	}
}

func TestCloudPublicURL(t *testing.T) {
	cloud, err := parseCloudConfig("s3://renders/videos")
	if err != nil {
		t.Fatalf("parseCloudConfig: %v", err)
	}
	got := cloud.publicURL("abc.mp4")
	want := "https://s3.amazonaws.com/renders/videos/abc.mp4"
	if got != want {
		t.Errorf("publicURL = %q, want %q", got, want)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]string{
		".mp4": "video/mp4",
		".wav": "audio/wav",
		".mp3": "audio/mpeg",
		".bin": "application/octet-stream",
	}
	for suffix, want := range tests {
		if got := contentTypeFor(suffix); got != want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", suffix, got, want)
		}
	}
}

func TestSaveRenderCloud(t *testing.T) {
	settings := testSettings(t)
	settings.StorageBase = "s3://renders/videos"
	store, err := New(settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fake := newFakeS3()
	store.s3 = fake

	stored, err := store.SaveRender(context.Background(), "abc123", []byte("video"))
	if err != nil {
		t.Fatalf("SaveRender: %v", err)
	}

	obj, ok := fake.objects["renders/videos/abc123.mp4"]
	if !ok {
		t.Fatalf("object not uploaded, have %v", fake.keys())
	}
	if obj.contentType != "video/mp4" {
		t.Errorf("content type = %q, want video/mp4", obj.contentType)
	}
	if stored.URL != "https://s3.amazonaws.com/renders/videos/abc123.mp4" {
		t.Errorf("unexpected URL %q", stored.URL)
	}
	if stored.Path != "s3://renders/videos/abc123.mp4" {
		t.Errorf("unexpected path %q", stored.Path)
	}
	if !fake.aclSet["renders/videos/abc123.mp4"] {
		t.Errorf("public-read ACL was not attempted")
	}
}

func TestSaveRenderCloudSurvivesACLFailure(t *testing.T) {
	settings := testSettings(t)
	settings.StorageBase = "s3://renders"
	store, err := New(settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fake := newFakeS3()
	fake.aclErr = errFakeACL
	store.s3 = fake

	if _, err := store.SaveRender(context.Background(), "abc123", []byte("video")); err != nil {
		t.Fatalf("SaveRender should tolerate ACL failure, got %v", err)
	}
}
