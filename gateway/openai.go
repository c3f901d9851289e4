package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/script"
	"github.com/kamilio/ai-studio/types"
)

// OpenAIClient is the live gateway client. Chat goes straight to the OpenAI
// chat completions API with function calling; media generation goes to the
// unified media gateway, a thin HTTP service that fronts the song/image/video
// providers and returns hosted URLs.
type OpenAIClient struct {
	chat    openai.Client
	http    *http.Client
	baseURL string
}

// NewOpenAIClient builds the live client. mediaBaseURL may be empty, in which
// case media generation calls fail with a configuration error while chat
// keeps working.
func NewOpenAIClient(apiKey, mediaBaseURL string) *OpenAIClient {
	return &OpenAIClient{
		chat: openai.NewClient(option.WithAPIKey(apiKey)),
		http: &http.Client{
			Timeout: config.GatewayTimeout,
		},
		baseURL: mediaBaseURL,
	}
}

func (c *OpenAIClient) Chat(ctx context.Context, history []ChatMessage, model string) (string, error) {
	completion, err := c.chat.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    chatModel(model),
		Messages: toOpenAIMessages(history),
	})
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ChatWithTools(ctx context.Context, history []ChatMessage, tools []script.ToolDefinition, model string) (*ChatResult, error) {
	completion, err := c.chat.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    chatModel(model),
		Messages: toOpenAIMessages(history),
		Tools:    toOpenAITools(tools),
	})
	if err != nil {
		return nil, fmt.Errorf("chat-with-tools request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat-with-tools returned no choices")
	}

	message := completion.Choices[0].Message
	result := &ChatResult{Text: message.Content}

	for _, call := range message.ToolCalls {
		args := map[string]any{}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			// Unparseable argument JSON from the model; keep the call with
			// empty args so the dispatch engine absorbs it as a no-op.
			log.Printf("Warning: tool call %s has malformed arguments: %v", call.Function.Name, err)
			args = nil
		}
		result.ToolCalls = append(result.ToolCalls, types.ToolCall{
			ID:   call.ID,
			Name: call.Function.Name,
			Args: args,
		})
	}
	return result, nil
}

func toOpenAIMessages(history []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case types.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return messages
}

func toOpenAITools(tools []script.ToolDefinition) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(tool.Parameters),
			},
		})
	}
	return params
}

func chatModel(model string) string {
	if model == "" {
		return config.DefaultChatModel
	}
	return model
}

// ---- media gateway ----

type mediaRequest struct {
	Kind   string `json:"kind"`
	Prompt string `json:"prompt,omitempty"`
	Title  string `json:"title,omitempty"`
	Style  string `json:"style,omitempty"`
	Lyrics string `json:"lyrics,omitempty"`
	Text   string `json:"text,omitempty"`
	Count  int    `json:"count,omitempty"`
	Model  string `json:"model,omitempty"`
}

type mediaResponse struct {
	URLs  []string `json:"urls"`
	Error string   `json:"error,omitempty"`
}

func (c *OpenAIClient) GenerateSong(ctx context.Context, req SongRequest) (string, error) {
	urls, err := c.generate(ctx, mediaRequest{
		Kind:   "song",
		Title:  req.Title,
		Style:  req.Style,
		Lyrics: req.Lyrics,
		Model:  req.Model,
	})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string, count int) ([]string, error) {
	return c.generate(ctx, mediaRequest{Kind: "image", Prompt: prompt, Count: count})
}

func (c *OpenAIClient) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	urls, err := c.generate(ctx, mediaRequest{Kind: "video", Prompt: prompt})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

func (c *OpenAIClient) GenerateAudio(ctx context.Context, text string) (string, error) {
	urls, err := c.generate(ctx, mediaRequest{Kind: "audio", Text: text})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

func (c *OpenAIClient) generate(ctx context.Context, req mediaRequest) ([]string, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("media gateway not configured; set AI_GATEWAY_URL")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("media gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("media gateway returned %d: %s", resp.StatusCode, string(payload))
	}

	var decoded mediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode media gateway response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("media gateway error: %s", decoded.Error)
	}
	if len(decoded.URLs) == 0 {
		return nil, fmt.Errorf("media gateway returned no urls")
	}

	log.Printf("Generated %s via gateway in %.1fs", req.Kind, time.Since(start).Seconds())
	return decoded.URLs, nil
}
