package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"minutemind/config"
	"minutemind/types"
)

// fallbackMediaDir is checked when an audio URL's primary resolution path
// does not exist but the basename was written there by another process.
const fallbackMediaDir = "/tmp/media"

// encode runs the live compositing path: one timed segment per scene,
// concatenated in scene order, encoded to a single MP4. All intermediate
// files live in a temp dir removed on every exit path.
func (c *Compositor) encode(ctx context.Context, script types.Script, audio []types.SceneAudio, imageURLs map[string]string) ([]byte, error) {
	audioByScene := make(map[string]types.SceneAudio, len(audio))
	for _, a := range audio {
		audioByScene[a.SceneID] = a
	}

	tmpDir, err := os.MkdirTemp("", "minutemind-render-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	var segments []string
	for i, scene := range script.Scenes {
		sceneAudio, ok := audioByScene[scene.SceneID]
		if !ok {
			return nil, fmt.Errorf("no audio for scene %s", scene.SceneID)
		}

		audioPath, err := c.resolveAudioPath(sceneAudio.AudioURL)
		if err != nil {
			return nil, err
		}

		// The decoded duration is authoritative for segment length; the
		// scene's nominal duration_seconds is never consulted here.
		duration, err := probeDuration(audioPath)
		if err != nil {
			return nil, fmt.Errorf("probe audio for scene %s: %w", scene.SceneID, err)
		}

		framePath := filepath.Join(tmpDir, fmt.Sprintf("frame_%03d.png", i))
		if err := c.writeSceneFrame(framePath, imageURLs[scene.SceneID]); err != nil {
			return nil, fmt.Errorf("frame for scene %s: %w", scene.SceneID, err)
		}

		segPath := filepath.Join(tmpDir, fmt.Sprintf("segment_%03d.ts", i))
		if err := buildSegment(framePath, audioPath, duration, segPath); err != nil {
			return nil, fmt.Errorf("segment for scene %s: %w", scene.SceneID, err)
		}
		segments = append(segments, segPath)
	}

	outPath := filepath.Join(tmpDir, "render.mp4")
	if err := concatSegments(tmpDir, segments, outPath); err != nil {
		return nil, fmt.Errorf("concatenate segments: %w", err)
	}

	payload, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("read render output: %w", err)
	}
	return payload, nil
}

// resolveAudioPath maps a stored audio URL back to a readable file,
// tolerating the fallback media directory for the URL's basename.
func (c *Compositor) resolveAudioPath(url string) (string, error) {
	primary := c.store.ResolveURL(url)
	if _, err := os.Stat(primary); err == nil {
		return primary, nil
	}
	candidate := filepath.Join(fallbackMediaDir, filepath.Base(primary))
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("audio payload missing at %s", primary)
}

// buildSegment loops a still frame over the audio track for the decoded
// duration and encodes one transport-stream segment.
func buildSegment(framePath, audioPath string, duration float64, segPath string) error {
	frame := ffmpeg.Input(framePath, ffmpeg.KwArgs{"loop": 1, "framerate": config.FrameRate})
	audio := ffmpeg.Input(audioPath)

	err := ffmpeg.Output([]*ffmpeg.Stream{frame, audio}, segPath, ffmpeg.KwArgs{
		"c:v":     config.VideoCodec,
		"c:a":     config.AudioCodec,
		"b:a":     config.AudioBitrate,
		"preset":  config.VideoPreset,
		"t":       fmt.Sprintf("%.3f", duration),
		"r":       config.FrameRate,
		"pix_fmt": "yuv420p",
		"f":       "mpegts",
	}).OverWriteOutput().Silent(true).Run()
	if err != nil {
		return fmt.Errorf("ffmpeg segment encode: %w", err)
	}
	return nil
}

// concatSegments remuxes the encoded segments into one MP4 without
// re-encoding.
func concatSegments(tmpDir string, segments []string, outPath string) error {
	listPath := filepath.Join(tmpDir, "segments.txt")
	var list string
	for _, seg := range segments {
		list += fmt.Sprintf("file '%s'\n", filepath.ToSlash(seg))
	}
	if err := os.WriteFile(listPath, []byte(list), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	err := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(outPath, ffmpeg.KwArgs{
			"c":        "copy",
			"movflags": "+faststart",
		}).OverWriteOutput().Silent(true).Run()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	return nil
}
