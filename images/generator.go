// Package images produces one illustration per scene, in parallel, with a
// best-effort policy: a failed live generation degrades to a placeholder
// and never fails the pipeline.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"minutemind/config"
	"minutemind/storage"
	"minutemind/types"
)

// stylePrompt is appended to every scene's visual description.
const stylePrompt = "Cinematic, professional, high quality."

// imageClient turns a prompt into image bytes.
type imageClient interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Generator produces and persists scene illustrations.
type Generator struct {
	settings config.Settings
	store    *storage.Store
	img      imageClient
}

// New builds a Generator. The live client is attached only when an OpenAI
// key is configured.
func New(settings config.Settings, store *storage.Store) *Generator {
	g := &Generator{settings: settings, store: store}
	if settings.OpenAIAPIKey != "" {
		g.img = &openaiImages{
			apiKey:     settings.OpenAIAPIKey,
			httpClient: &http.Client{Timeout: 180 * time.Second},
		}
	}
	return g
}

// GenerateForScript returns a scene_id → image_url mapping. Keys are always
// a subset of the script's scene ids. Scenes run in parallel; only a
// failure to produce even the placeholder is fatal.
func (g *Generator) GenerateForScript(ctx context.Context, script *types.Script) (map[string]string, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		urls   = make(map[string]string, len(script.Scenes))
		fatal  error
		record = func(sceneID, url string) {
			mu.Lock()
			urls[sceneID] = url
			mu.Unlock()
		}
	)

	for _, scene := range script.Scenes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := g.generateScene(ctx, script.ScriptID, scene)
			if err != nil {
				mu.Lock()
				if fatal == nil {
					fatal = err
				}
				mu.Unlock()
				return
			}
			if url != "" {
				record(scene.SceneID, url)
			}
		}()
	}
	wg.Wait()

	if fatal != nil {
		return nil, fatal
	}
	return urls, nil
}

// generateScene returns the persisted image URL for one scene, or "" when
// the image could not be stored. Only placeholder generation failure
// returns an error.
func (g *Generator) generateScene(ctx context.Context, scriptID string, scene types.Scene) (string, error) {
	var payload []byte

	if !g.settings.MockImages && g.img != nil {
		prompt := fmt.Sprintf("%s. %s", scene.Visual, stylePrompt)
		rendered, err := g.img.Generate(ctx, prompt)
		if err != nil {
			log.Printf("[images] live generation failed for scene %s, using placeholder: %v", scene.SceneID, err)
		} else {
			payload = rendered
		}
	}

	if payload == nil {
		fallback, err := placeholderPNG(config.FrameWidth, config.FrameHeight, "Generated Image")
		if err != nil {
			return "", fmt.Errorf("placeholder for scene %s: %w", scene.SceneID, err)
		}
		payload = fallback
	}

	stored, err := g.store.SaveBytes(ctx, scriptID+"-"+scene.SceneID+"-image", payload, ".png")
	if err != nil {
		log.Printf("[images] could not persist image for scene %s: %v", scene.SceneID, err)
		return "", nil
	}
	return stored.URL, nil
}

// openaiImages calls the image generation endpoint and fetches the result
// bytes from the transient URL it returns.
type openaiImages struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func (o *openaiImages) Generate(ctx context.Context, prompt string) ([]byte, error) {
	endpoint := o.endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/images/generations"
	}

	body, err := json.Marshal(map[string]any{
		"model":   "dall-e-3",
		"prompt":  prompt,
		"size":    "1024x1024",
		"quality": "standard",
		"n":       1,
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
		return nil, fmt.Errorf("image API status %d: %s", resp.StatusCode, detail)
	}

	var parsed struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return nil, fmt.Errorf("no image URL in response")
	}

	return o.download(ctx, parsed.Data[0].URL)
}

func (o *openaiImages) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
