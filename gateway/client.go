package gateway

import (
	"context"
	"os"

	"github.com/kamilio/ai-studio/script"
	"github.com/kamilio/ai-studio/types"
)

// ChatMessage is one turn of a linear conversation sent to the gateway.
type ChatMessage struct {
	Role    types.Role `json:"role"`
	Content string     `json:"content"`
}

// ChatResult is what a chat-with-tools request produces: assistant text plus
// zero or more structured tool calls matching the advertised registry.
type ChatResult struct {
	Text      string           `json:"text"`
	ToolCalls []types.ToolCall `json:"toolCalls"`
}

// SongRequest asks for one audio take of a set of lyrics.
type SongRequest struct {
	Title  string `json:"title"`
	Style  string `json:"style"`
	Lyrics string `json:"lyrics"`
	Model  string `json:"model,omitempty"`
}

// Client is the uniform generation-gateway interface every core subsystem
// consumes. Which implementation is active is decided once, at construction
// time; nothing downstream branches on it. Generate calls return publicly
// fetchable URLs.
type Client interface {
	Chat(ctx context.Context, history []ChatMessage, model string) (string, error)
	ChatWithTools(ctx context.Context, history []ChatMessage, tools []script.ToolDefinition, model string) (*ChatResult, error)
	GenerateSong(ctx context.Context, req SongRequest) (string, error)
	GenerateImage(ctx context.Context, prompt string, count int) ([]string, error)
	GenerateVideo(ctx context.Context, prompt string) (string, error)
	GenerateAudio(ctx context.Context, text string) (string, error)
}

// NewClientFromEnv picks the live client when OPENAI_API_KEY is configured
// and the fixture-replaying mock otherwise. STUDIO_MOCK=true forces the mock
// regardless, which is what the dev loop and screenshot runs use.
func NewClientFromEnv() Client {
	if os.Getenv("STUDIO_MOCK") == "true" {
		return NewMockClient()
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return NewOpenAIClient(key, os.Getenv("AI_GATEWAY_URL"))
	}
	return NewMockClient()
}
