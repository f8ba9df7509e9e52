// Package video merges per-scene audio and images into timed segments,
// concatenates them in scene order, and encodes one distributable file.
package video

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"minutemind/config"
	"minutemind/storage"
	"minutemind/types"
)

// RenderError wraps any failure inside the compositing or encoding path.
// A render is atomic: it either yields completed metadata or this error,
// with no partial artifact left addressable.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "video render failed: " + e.Err.Error() }
func (e *RenderError) Unwrap() error { return e.Err }

type renderState string

const (
	statePreparing   renderState = "PREPARING"
	stateCompositing renderState = "COMPOSITING"
	stateEncoding    renderState = "ENCODING"
	statePersisted   renderState = "PERSISTED"
)

// Compositor renders script responses into videos.
type Compositor struct {
	settings config.Settings
	store    *storage.Store
}

// New builds a Compositor.
func New(settings config.Settings, store *storage.Store) *Compositor {
	return &Compositor{settings: settings, store: store}
}

// Render produces the video for a script response, persists it and its
// metadata record, and returns the record with status "completed".
func (c *Compositor) Render(ctx context.Context, resp types.ScriptResponse) (*types.VideoMetadata, error) {
	script := resp.Script
	state := statePreparing
	log.Printf("[video] render %s: %s", script.ScriptID, state)

	imageURLs := make(map[string]string, len(resp.Images))
	for _, img := range resp.Images {
		imageURLs[img.SceneID] = img.ImageURL
	}

	var payload []byte
	if c.settings.MockVideo {
		payload = mockPayload(script, resp.Audio)
	} else {
		state = stateCompositing
		log.Printf("[video] render %s: %s", script.ScriptID, state)
		encoded, err := c.encode(ctx, script, resp.Audio, imageURLs)
		if err != nil {
			return nil, &RenderError{Err: err}
		}
		payload = encoded
	}

	state = stateEncoding
	log.Printf("[video] render %s: %s", script.ScriptID, state)

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	stored, err := c.store.SaveRender(ctx, name, payload)
	if err != nil {
		return nil, &RenderError{Err: fmt.Errorf("persist render: %w", err)}
	}

	meta := types.VideoMetadata{
		VideoID:      uuid.NewString(),
		ScriptID:     script.ScriptID,
		Title:        script.Topic,
		Status:       "completed",
		CreatedAt:    time.Now().UTC(),
		StoragePath:  stored.URL,
		ThumbnailURL: firstSceneImage(script, imageURLs),
	}
	if err := c.store.SaveMetadata(ctx, meta); err != nil {
		return nil, &RenderError{Err: fmt.Errorf("persist metadata: %w", err)}
	}

	state = statePersisted
	log.Printf("[video] render %s: %s as %s", script.ScriptID, state, meta.VideoID)
	return &meta, nil
}

// mockPayload summarizes the script and audio locators as text, keeping
// the pipeline and its tests decoupled from codec dependencies.
func mockPayload(script types.Script, audio []types.SceneAudio) []byte {
	lines := []string{"Topic: " + script.Topic}
	for _, scene := range script.Scenes {
		lines = append(lines,
			fmt.Sprintf("Scene %s: %s", scene.SceneID, scene.Title),
			"Visual: "+scene.Visual,
			"Narration: "+scene.Narration,
		)
	}
	for _, a := range audio {
		lines = append(lines, "Audio stored at: "+a.AudioURL)
	}
	return []byte(strings.Join(lines, "\n"))
}

// firstSceneImage picks the thumbnail: the first scene in playback order
// that has an illustration.
func firstSceneImage(script types.Script, imageURLs map[string]string) string {
	for _, scene := range script.Scenes {
		if url, ok := imageURLs[scene.SceneID]; ok {
			return url
		}
	}
	return ""
}
