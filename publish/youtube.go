// Package publish pushes a rendered video to YouTube when a service
// account is configured. Publishing is an optional last step; the
// pipeline is complete without it.
package publish

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"minutemind/types"
)

// CategoryEducation is the YouTube category for explainer content.
const CategoryEducation = "27"

// Publisher uploads rendered videos.
type Publisher struct {
	service *youtube.Service
}

// New builds a Publisher from a service account file.
func New(ctx context.Context, serviceAccountFile string) (*Publisher, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Publisher{service: service}, nil
}

// truncateTitle fits a title into YouTube's 100-character limit. Counted
// in runes so a multi-byte character at the cut never yields invalid UTF-8.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 100 {
		return title
	}
	return string(runes[:97]) + "..."
}

// Publish uploads the video payload at path using snippet metadata derived
// from the render record, returning the YouTube video id.
func (p *Publisher) Publish(videoPath string, meta types.VideoMetadata) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("open video payload: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat video payload: %w", err)
	}
	log.Printf("[publish] uploading %s (%.2f MB)", videoPath, float64(info.Size())/(1024*1024))

	title := truncateTitle(meta.Title)

	upload := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: fmt.Sprintf("An explainer video about %s.", meta.Title),
			Tags:        []string{"explainer", "education", meta.Title},
			CategoryId:  CategoryEducation,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           "unlisted",
			SelfDeclaredMadeForKids: false,
		},
	}

	call := p.service.Videos.Insert([]string{"snippet", "status"}, upload).Media(file)
	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}

	log.Printf("[publish] uploaded video %s as https://youtube.com/watch?v=%s", meta.VideoID, response.Id)
	return response.Id, nil
}
