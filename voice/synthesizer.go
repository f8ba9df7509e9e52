// Package voice converts scene narration text into persisted audio
// payloads, one concurrent synthesis task per scene.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"minutemind/config"
	"minutemind/storage"
	"minutemind/types"
)

// SynthesisError reports a failed live voice call for one scene. It is
// propagated, never retried and never downgraded to silence: mock/live is
// chosen once per call, not per failure.
type SynthesisError struct {
	SceneID string
	Err     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("voice synthesis failed for scene %s: %v", e.SceneID, e.Err)
}
func (e *SynthesisError) Unwrap() error { return e.Err }

// ttsClient renders narration text to an audio payload.
type ttsClient interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Synthesizer produces one SceneAudio per scene.
type Synthesizer struct {
	settings config.Settings
	store    *storage.Store
	tts      ttsClient
}

// New builds a Synthesizer. The live client is attached only when an
// OpenAI key is configured.
func New(settings config.Settings, store *storage.Store) *Synthesizer {
	s := &Synthesizer{settings: settings, store: store}
	if settings.OpenAIAPIKey != "" {
		s.tts = &openaiTTS{
			apiKey: settings.OpenAIAPIKey,
			model:  settings.TTSModel,
			voice:  settings.TTSVoice,
			httpClient: &http.Client{
				Timeout: 120 * time.Second,
			},
		}
	}
	return s
}

// Synthesize returns exactly one SceneAudio per scene, in script order.
// Scenes run in parallel with an all-or-nothing join: the first failure
// fails the whole call.
func (s *Synthesizer) Synthesize(ctx context.Context, script *types.Script) ([]types.SceneAudio, error) {
	results := make([]types.SceneAudio, len(script.Scenes))

	g, ctx := errgroup.WithContext(ctx)
	for i, scene := range script.Scenes {
		g.Go(func() error {
			audio, err := s.synthesizeScene(ctx, script.ScriptID, scene)
			if err != nil {
				return err
			}
			results[i] = audio
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Synthesizer) synthesizeScene(ctx context.Context, scriptID string, scene types.Scene) (types.SceneAudio, error) {
	var payload []byte
	var suffix string

	if s.settings.MockTTS || s.tts == nil {
		payload = silentWAV(config.SilenceSampleRate, config.SilenceDurationSeconds)
		suffix = ".wav"
	} else {
		rendered, err := s.tts.Speak(ctx, scene.Narration)
		if err != nil {
			return types.SceneAudio{}, &SynthesisError{SceneID: scene.SceneID, Err: err}
		}
		payload = rendered
		suffix = ".mp3"
	}

	// The name encodes script and scene ids, so re-synthesis overwrites
	// the same key instead of accumulating copies.
	stored, err := s.store.SaveBytes(ctx, scriptID+"-"+scene.SceneID, payload, suffix)
	if err != nil {
		return types.SceneAudio{}, fmt.Errorf("persist narration for scene %s: %w", scene.SceneID, err)
	}

	// Duration stays unset: the compositor measures it from the payload.
	return types.SceneAudio{SceneID: scene.SceneID, AudioURL: stored.URL}, nil
}

// openaiTTS calls the OpenAI speech endpoint and returns the raw audio
// container it responds with (MP3 by default).
type openaiTTS struct {
	apiKey     string
	model      string
	voice      string
	endpoint   string
	httpClient *http.Client
}

func (o *openaiTTS) Speak(ctx context.Context, text string) ([]byte, error) {
	endpoint := o.endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/audio/speech"
	}

	body, err := json.Marshal(map[string]string{
		"model": o.model,
		"voice": o.voice,
		"input": text,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("speech API status %d: %s", resp.StatusCode, detail)
	}
	return io.ReadAll(resp.Body)
}
