// Package script turns a topic request into a structured, scene-ordered
// script, either through a chat model or a deterministic offline fallback.
package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/google/uuid"

	"minutemind/config"
	"minutemind/types"
)

// GenerationError reports that a script could not be produced or parsed
// into valid structured form. Once a live call was attempted, parse
// failures surface as this error instead of falling back silently.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "script generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// ErrEmptyResponse marks a chat response that carried no usable text.
var ErrEmptyResponse = errors.New("chat response contained no text")

// llmClient is the narrow chat surface the generator needs; tests supply
// a fake.
type llmClient interface {
	Chat(ctx context.Context, preamble, prompt string) (string, error)
}

// Generator produces scripts. Construct with New.
type Generator struct {
	settings config.Settings
	llm      llmClient
}

// New builds a Generator. A Cohere client is attached only when an API key
// is configured; without one every call takes the offline fallback.
func New(settings config.Settings) *Generator {
	g := &Generator{settings: settings}
	if settings.CohereAPIKey != "" {
		g.llm = &cohereChat{
			client: cohereclient.NewClient(cohereclient.WithToken(settings.CohereAPIKey)),
			model:  settings.LLMModel,
		}
	}
	return g
}

// Generate returns a script for the request. Mock mode and the missing-key
// case use the deterministic fallback; a live attempt that fails never
// downgrades to the fallback.
func (g *Generator) Generate(ctx context.Context, req types.ScriptRequest) (*types.Script, error) {
	if g.settings.MockScript || g.llm == nil {
		return fallbackScript(req), nil
	}

	raw, err := g.llm.Chat(ctx, scriptPreamble, buildScriptPrompt(req))
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	parsed, err := parseScript(raw, req)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	return parsed, nil
}

// fallbackScript is the canonical offline script: fixed wording and scene
// ids so tests can rely on it, fresh script_id and timestamp per call.
func fallbackScript(req types.ScriptRequest) *types.Script {
	return &types.Script{
		ScriptID:        uuid.NewString(),
		Topic:           req.Topic,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       time.Now().UTC(),
		Scenes: []types.Scene{
			{
				SceneID:         "scene-1",
				Title:           "Hook",
				Visual:          "Animated focus timer counting down",
				Narration:       "Picture your attention like a muscle. Let's warm it up with a one-minute focus sprint.",
				DurationSeconds: 20,
			},
			{
				SceneID:         "scene-2",
				Title:           "Core Idea",
				Visual:          "Whiteboard sketches explaining the topic",
				Narration:       fmt.Sprintf("Here are the three essentials of %s: break work into sprints, remove distractions, and celebrate small wins.", req.Topic),
				DurationSeconds: 35,
			},
			{
				SceneID:         "scene-3",
				Title:           "Takeaway",
				Visual:          "Calm background with checklist overlay",
				Narration:       "Try a two-minute timer, mute notifications, and note a single win when you finish. Your brain loves quick victories!",
				DurationSeconds: 25,
			},
		},
	}
}

type scriptPayload struct {
	Topic           string        `json:"topic"`
	DurationMinutes int           `json:"duration_minutes"`
	Scenes          []types.Scene `json:"scenes"`
}

// parseScript decodes a raw chat response into a validated Script.
func parseScript(raw string, req types.ScriptRequest) (*types.Script, error) {
	block, err := extractJSONBlock(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Script *scriptPayload `json:"script"`
	}
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil, fmt.Errorf("decode script JSON: %w", err)
	}
	if payload.Script == nil {
		return nil, errors.New("JSON payload missing 'script' root key")
	}
	if len(payload.Script.Scenes) == 0 {
		return nil, errors.New("parsed script contained no scenes")
	}

	seen := make(map[string]bool, len(payload.Script.Scenes))
	for i := range payload.Script.Scenes {
		scene := &payload.Script.Scenes[i]
		if err := scene.Validate(); err != nil {
			return nil, err
		}
		if seen[scene.SceneID] {
			return nil, fmt.Errorf("duplicate scene_id %s", scene.SceneID)
		}
		seen[scene.SceneID] = true
	}

	topic := payload.Script.Topic
	if topic == "" {
		topic = req.Topic
	}
	minutes := payload.Script.DurationMinutes
	if minutes == 0 {
		minutes = req.DurationMinutes
	}

	return &types.Script{
		ScriptID:        uuid.NewString(),
		Topic:           topic,
		DurationMinutes: minutes,
		Scenes:          payload.Script.Scenes,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// extractJSONBlock strips optional code fences and returns the outermost
// {...} object in the response text.
func extractJSONBlock(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.Index(cleaned, "\n"); idx >= 0 && !strings.HasPrefix(cleaned, "{") {
			// Drop a language tag such as ```json
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return "", errors.New("response did not contain a JSON object")
	}
	return cleaned[start : end+1], nil
}

// cohereChat adapts the Cohere chat API to llmClient.
type cohereChat struct {
	client *cohereclient.Client
	model  string
}

func (c *cohereChat) Chat(ctx context.Context, preamble, prompt string) (string, error) {
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     prompt,
		Model:       cohere.String(c.model),
		Preamble:    cohere.String(preamble),
		Temperature: cohere.Float64(0.4),
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil || resp.Text == "" {
		return "", ErrEmptyResponse
	}
	return resp.Text, nil
}
