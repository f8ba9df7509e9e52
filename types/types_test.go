package types

import (
	"strings"
	"testing"
)

func TestScriptRequestNormalize(t *testing.T) {
	req := ScriptRequest{Topic: "Deep focus"}
	req.Normalize()
	if req.DurationMinutes != 1 {
		t.Errorf("duration_minutes = %d, want 1", req.DurationMinutes)
	}
	if req.Tone != "engaging" {
		t.Errorf("tone = %q, want engaging", req.Tone)
	}

	req = ScriptRequest{Topic: "x", DurationMinutes: 7, Tone: "calm"}
	req.Normalize()
	if req.DurationMinutes != 7 || req.Tone != "calm" {
		t.Errorf("normalize overwrote set fields: %+v", req)
	}
}

func TestScriptRequestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     ScriptRequest
		wantErr bool
	}{
		{"valid", ScriptRequest{Topic: "x", DurationMinutes: 1}, false},
		{"upper bound", ScriptRequest{Topic: "x", DurationMinutes: 30}, false},
		{"empty topic", ScriptRequest{DurationMinutes: 1}, true},
		{"whitespace topic", ScriptRequest{Topic: "  ", DurationMinutes: 1}, true},
		{"zero duration", ScriptRequest{Topic: "x"}, true},
		{"too long", ScriptRequest{Topic: "x", DurationMinutes: 31}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSceneValidate(t *testing.T) {
	scene := Scene{SceneID: "s1", Title: "T", Visual: "V", Narration: "N"}
	if err := scene.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if scene.DurationSeconds != 20 {
		t.Errorf("zero duration should default to 20, got %d", scene.DurationSeconds)
	}

	cases := []struct {
		name  string
		scene Scene
		want  string
	}{
		{"missing id", Scene{Title: "T", Visual: "V", Narration: "N"}, "scene_id"},
		{"missing title", Scene{SceneID: "s1", Visual: "V", Narration: "N"}, "title"},
		{"missing visual", Scene{SceneID: "s1", Title: "T", Narration: "N"}, "visual"},
		{"blank narration", Scene{SceneID: "s1", Title: "T", Visual: "V", Narration: " "}, "narration"},
		{"too short", Scene{SceneID: "s1", Title: "T", Visual: "V", Narration: "N", DurationSeconds: 4}, "out of range"},
		{"too long", Scene{SceneID: "s1", Title: "T", Visual: "V", Narration: "N", DurationSeconds: 121}, "out of range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.scene.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
