package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kamilio/ai-studio/script"
	"github.com/kamilio/ai-studio/types"
)

// MockClient is the offline stand-in for the live gateway. Responses can be
// queued ahead of time for deterministic replay; when the queue for a call is
// empty the client falls back to canned output, so the app stays usable with
// no keys configured.
type MockClient struct {
	mu          sync.Mutex
	chatQueue   []string
	toolQueue   []*ChatResult
	callCounter int

	// Calls records every request in arrival order, for assertions.
	Calls []string
}

// NewMockClient returns an empty mock; all calls use the canned defaults
// until fixtures are enqueued.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// EnqueueChat schedules the next plain-chat responses, consumed in order.
func (c *MockClient) EnqueueChat(responses ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatQueue = append(c.chatQueue, responses...)
}

// EnqueueToolResult schedules the next chat-with-tools responses.
func (c *MockClient) EnqueueToolResult(results ...*ChatResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toolQueue = append(c.toolQueue, results...)
}

func (c *MockClient) Chat(ctx context.Context, history []ChatMessage, model string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "chat")

	if len(c.chatQueue) > 0 {
		next := c.chatQueue[0]
		c.chatQueue = c.chatQueue[1:]
		return next, nil
	}

	prompt := ""
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	return cannedLyrics(prompt), nil
}

func (c *MockClient) ChatWithTools(ctx context.Context, history []ChatMessage, tools []script.ToolDefinition, model string) (*ChatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, "chatWithTools")

	if len(c.toolQueue) > 0 {
		next := c.toolQueue[0]
		c.toolQueue = c.toolQueue[1:]
		return next, nil
	}
	return &ChatResult{Text: "Nothing to change."}, nil
}

func (c *MockClient) GenerateSong(ctx context.Context, req SongRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.placeholderURL("song", "mp3"), nil
}

func (c *MockClient) GenerateImage(ctx context.Context, prompt string, count int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	urls := make([]string, 0, count)
	for i := 0; i < count; i++ {
		urls = append(urls, c.placeholderURL("image", "png"))
	}
	return urls, nil
}

func (c *MockClient) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.placeholderURL("video", "mp4"), nil
}

func (c *MockClient) GenerateAudio(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.placeholderURL("audio", "mp3"), nil
}

func (c *MockClient) placeholderURL(kind, ext string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, kind)
	c.callCounter++
	return fmt.Sprintf("https://mock.studio.local/%s/%d.%s", kind, c.callCounter, ext)
}

// cannedLyrics produces a frontmatter reply so the lyrics pipeline parses the
// mock output exactly like a live response.
func cannedLyrics(prompt string) string {
	topic := strings.TrimSpace(prompt)
	if topic == "" {
		topic = "an empty page"
	}
	if len(topic) > 40 {
		topic = topic[:40]
	}
	return fmt.Sprintf(
		"---\ntitle: Song about %s\nstyle: indie pop\ncommentary: mock take, swap in a real key for the good stuff\n---\nVerse one about %s\nand a chorus to match\n",
		topic, topic,
	)
}

// ToolCallFixture is a convenience for building mock tool responses in tests.
func ToolCallFixture(name string, args map[string]any) types.ToolCall {
	return types.ToolCall{
		ID:   fmt.Sprintf("call-%s", name),
		Name: name,
		Args: args,
	}
}
