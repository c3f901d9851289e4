package render

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/types"
)

// Publisher uploads rendered scripts to YouTube via a service account.
type Publisher struct {
	service *youtube.Service
}

func NewPublisher(ctx context.Context, serviceAccountFile string) (*Publisher, error) {
	data, err := os.ReadFile(serviceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account: %w", err)
	}

	service, err := youtube.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create YouTube service: %w", err)
	}
	return &Publisher{service: service}, nil
}

// Publish uploads the rendered file using metadata derived from the script
// and returns the video id.
func (p *Publisher) Publish(videoPath string, script types.Script) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video file: %w", err)
	}
	log.Printf("Uploading %s (%.2f MB)", videoPath, float64(info.Size())/(1024*1024))

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       publishTitle(script),
			Description: publishDescription(script),
			CategoryId:  config.YouTubeCategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           config.YouTubePrivacyStatus,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := p.service.Videos.Insert([]string{"snippet", "status"}, video).Media(file)
	response, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	log.Printf("Uploaded https://youtube.com/watch?v=%s", response.Id)
	return response.Id, nil
}

func publishTitle(script types.Script) string {
	title := script.Title
	if title == "" {
		title = "Untitled"
	}
	if len(title) > 100 {
		title = title[:97] + "..."
	}
	return title
}

func publishDescription(script types.Script) string {
	total := 0.0
	for _, shot := range script.Shots {
		total += shot.Duration
	}
	return fmt.Sprintf("%s\n\n%d shots, %.0f seconds.", script.Title, len(script.Shots), total)
}
