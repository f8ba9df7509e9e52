package images

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"strings"
	"testing"

	"minutemind/config"
	"minutemind/storage"
	"minutemind/types"
)

type fakeImages struct {
	payload []byte
	err     error
	prompts []string
}

func (f *fakeImages) Generate(_ context.Context, prompt string) ([]byte, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.New(config.Settings{
		StorageBase: "http://test/media",
		MediaRoot:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return store
}

func testScript() *types.Script {
	return &types.Script{
		ScriptID: "script-1",
		Topic:    "Deep focus",
		Scenes: []types.Scene{
			{SceneID: "scene-1", Title: "Hook", Visual: "timer", Narration: "n", DurationSeconds: 20},
			{SceneID: "scene-2", Title: "Core", Visual: "whiteboard", Narration: "n", DurationSeconds: 35},
		},
	}
}

func TestGenerateForScriptMockProducesPlaceholders(t *testing.T) {
	store := testStore(t)
	gen := New(config.Settings{MockImages: true}, store)

	script := testScript()
	urls, err := gen.GenerateForScript(context.Background(), script)
	if err != nil {
		t.Fatalf("GenerateForScript: %v", err)
	}
	if len(urls) != len(script.Scenes) {
		t.Fatalf("expected %d images, got %d", len(script.Scenes), len(urls))
	}
	for _, scene := range script.Scenes {
		url, ok := urls[scene.SceneID]
		if !ok {
			t.Errorf("no image for scene %s", scene.SceneID)
			continue
		}
		want := "http://test/media/script-1-" + scene.SceneID + "-image.png"
		if url != want {
			t.Errorf("image URL = %q, want %q", url, want)
		}
	}
}

func TestGenerateForScriptKeysAreSceneIDs(t *testing.T) {
	store := testStore(t)
	gen := New(config.Settings{MockImages: true}, store)

	script := testScript()
	urls, err := gen.GenerateForScript(context.Background(), script)
	if err != nil {
		t.Fatalf("GenerateForScript: %v", err)
	}
	known := map[string]bool{}
	for _, scene := range script.Scenes {
		known[scene.SceneID] = true
	}
	for id := range urls {
		if !known[id] {
			t.Errorf("unknown key %q in image map", id)
		}
	}
}

func TestPlaceholderDecodesAtFrameSize(t *testing.T) {
	store := testStore(t)
	gen := New(config.Settings{MockImages: true}, store)

	urls, err := gen.GenerateForScript(context.Background(), testScript())
	if err != nil {
		t.Fatalf("GenerateForScript: %v", err)
	}

	payload, err := os.ReadFile(store.ResolveURL(urls["scene-1"]))
	if err != nil {
		t.Fatalf("read image payload: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("decode placeholder: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != config.FrameWidth || bounds.Dy() != config.FrameHeight {
		t.Errorf("placeholder is %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), config.FrameWidth, config.FrameHeight)
	}
}

func TestGenerateForScriptLivePrompts(t *testing.T) {
	store := testStore(t)
	payload, err := placeholderPNG(64, 64, "x")
	if err != nil {
		t.Fatalf("placeholderPNG: %v", err)
	}
	img := &fakeImages{payload: payload}
	gen := &Generator{settings: config.Settings{}, store: store, img: img}

	urls, err := gen.GenerateForScript(context.Background(), testScript())
	if err != nil {
		t.Fatalf("GenerateForScript: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 images, got %d", len(urls))
	}
	if len(img.prompts) != 2 {
		t.Fatalf("expected 2 live calls, got %d", len(img.prompts))
	}
	for _, prompt := range img.prompts {
		if !strings.Contains(prompt, stylePrompt) {
			t.Errorf("prompt missing style suffix: %q", prompt)
		}
	}
}

func TestGenerateForScriptLiveFailureDegradesToPlaceholder(t *testing.T) {
	store := testStore(t)
	img := &fakeImages{err: errors.New("quota exhausted")}
	gen := &Generator{settings: config.Settings{}, store: store, img: img}

	script := testScript()
	urls, err := gen.GenerateForScript(context.Background(), script)
	if err != nil {
		t.Fatalf("live failure should not fail the call: %v", err)
	}
	if len(urls) != len(script.Scenes) {
		t.Fatalf("expected placeholder for every scene, got %d entries", len(urls))
	}
	payload, err := os.ReadFile(store.ResolveURL(urls["scene-1"]))
	if err != nil {
		t.Fatalf("read image payload: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("fallback is not a PNG: %v", err)
	}
	if decoded.Bounds().Dx() != config.FrameWidth {
		t.Errorf("fallback width = %d, want %d", decoded.Bounds().Dx(), config.FrameWidth)
	}
}
