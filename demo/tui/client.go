package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StudioClient is a thin HTTP client for the studio API
type StudioClient struct {
	baseURL string
	client  *http.Client
}

// NewStudioClient creates a new studio client
func NewStudioClient(baseURL string) *StudioClient {
	return &StudioClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 150 * time.Second,
		},
	}
}

// ShotView is the slice of a shot the TUI renders
type ShotView struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Prompt    string  `json:"prompt"`
	Duration  float64 `json:"duration"`
	Subtitles bool    `json:"subtitles"`
}

// ScriptView is the slice of a script the TUI renders
type ScriptView struct {
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Shots []ShotView `json:"shots"`
}

// CallReportView is one tool call outcome from an edit turn
type CallReportView struct {
	Call struct {
		Name string `json:"name"`
	} `json:"call"`
	Applied bool `json:"applied"`
}

// ChatResponse is the JSON response from the script chat endpoint
type ChatResponse struct {
	Script  ScriptView       `json:"script"`
	Text    string           `json:"text"`
	Reports []CallReportView `json:"reports"`
}

// CreateScript creates a fresh script for the chat session
func (c *StudioClient) CreateScript(title string) (*ScriptView, error) {
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Script ScriptView `json:"script"`
	}
	if err := c.post("/api/scripts", body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to create script: %w", err)
	}
	return &decoded.Script, nil
}

// Chat sends one edit prompt against the script
func (c *StudioClient) Chat(scriptID, prompt string) (*ChatResponse, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, err
	}

	var decoded ChatResponse
	if err := c.post("/api/scripts/"+scriptID+"/chat", body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to chat: %w", err)
	}
	return &decoded, nil
}

// Health checks whether the studio server is reachable
func (c *StudioClient) Health() error {
	resp, err := c.client.Get(c.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return nil
}

func (c *StudioClient) post(path string, body []byte, dst any) error {
	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
