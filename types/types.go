package types

import (
	"fmt"
	"strings"
	"time"
)

// ScriptRequest is the caller-supplied description of the video to produce.
type ScriptRequest struct {
	Topic           string `json:"topic"`
	DurationMinutes int    `json:"duration_minutes"`
	Tone            string `json:"tone"`
}

// Normalize fills unset optional fields with their defaults.
func (r *ScriptRequest) Normalize() {
	if r.DurationMinutes == 0 {
		r.DurationMinutes = 1
	}
	if strings.TrimSpace(r.Tone) == "" {
		r.Tone = "engaging"
	}
}

// Validate checks the field constraints the routing layer enforces.
func (r ScriptRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	if r.DurationMinutes < 1 || r.DurationMinutes > 30 {
		return fmt.Errorf("duration_minutes must be between 1 and 30, got %d", r.DurationMinutes)
	}
	return nil
}

// Scene is one narrated, visually-described beat of a script.
type Scene struct {
	SceneID         string `json:"scene_id"`
	Title           string `json:"title"`
	Visual          string `json:"visual"`
	Narration       string `json:"narration"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Validate checks a scene decoded from an LLM response against the schema.
// A zero duration takes the default before the bounds check.
func (s *Scene) Validate() error {
	if s.SceneID == "" {
		return fmt.Errorf("scene missing scene_id")
	}
	if s.Title == "" {
		return fmt.Errorf("scene %s missing title", s.SceneID)
	}
	if s.Visual == "" {
		return fmt.Errorf("scene %s missing visual description", s.SceneID)
	}
	if strings.TrimSpace(s.Narration) == "" {
		return fmt.Errorf("scene %s missing narration", s.SceneID)
	}
	if s.DurationSeconds == 0 {
		s.DurationSeconds = 20
	}
	if s.DurationSeconds < 5 || s.DurationSeconds > 120 {
		return fmt.Errorf("scene %s duration_seconds %d out of range [5,120]", s.SceneID, s.DurationSeconds)
	}
	return nil
}

// Script is an ordered sequence of scenes produced once and immutable after.
type Script struct {
	ScriptID        string    `json:"script_id"`
	Topic           string    `json:"topic"`
	DurationMinutes int       `json:"duration_minutes"`
	Scenes          []Scene   `json:"scenes"`
	CreatedAt       time.Time `json:"created_at"`
}

// SceneAudio references a scene by id and points at its narration payload.
// DurationSeconds stays nil unless independently measured; the compositor
// derives the true duration from the payload itself.
type SceneAudio struct {
	SceneID         string   `json:"scene_id"`
	AudioURL        string   `json:"audio_url"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
}

// SceneImage references a scene by id and points at its illustration.
type SceneImage struct {
	SceneID  string `json:"scene_id"`
	ImageURL string `json:"image_url"`
}

// ScriptResponse bundles a script with its audio and (possibly partial)
// image sets. This is the unit the compositor consumes.
type ScriptResponse struct {
	Script Script       `json:"script"`
	Audio  []SceneAudio `json:"audio"`
	Images []SceneImage `json:"images"`
}

// VideoMetadata is the discoverable record of one completed render.
type VideoMetadata struct {
	VideoID      string    `json:"video_id"`
	ScriptID     string    `json:"script_id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	StoragePath  string    `json:"storage_path"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}

// StoredMedia pairs the public URL of a persisted artifact with its
// internal storage locator.
type StoredMedia struct {
	URL  string
	Path string
}
