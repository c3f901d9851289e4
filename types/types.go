package types

import "time"

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AudioSource selects where a shot's narration audio comes from.
type AudioSource string

const (
	// AudioSourceVideo keeps the native audio track of the generated video.
	AudioSourceVideo AudioSource = "video"
	// AudioSourceElevenLabs uses synthesized speech for the narration text.
	AudioSourceElevenLabs AudioSource = "elevenlabs"
)

// Narration holds per-shot narration configuration.
type Narration struct {
	Enabled     bool        `json:"enabled"`
	Text        string      `json:"text"`
	AudioSource AudioSource `json:"audioSource"`
}

// Video tracks the selected generated video for a shot plus prior takes.
type Video struct {
	SelectedURL *string  `json:"selectedUrl"`
	History     []string `json:"history"`
}

// Shot is one unit of video generation within a script. Shots have no
// lifecycle of their own; they exist only inside their owning script, and
// their ids are stable across reorders.
type Shot struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Prompt    string    `json:"prompt"`
	Narration Narration `json:"narration"`
	Video     Video     `json:"video"`
	Subtitles bool      `json:"subtitles"`
	Duration  float64   `json:"duration"`
}

// ScriptSettings are script-wide defaults applied to newly created shots and
// overridable per shot.
type ScriptSettings struct {
	NarrationEnabled bool   `json:"narrationEnabled"`
	Subtitles        bool   `json:"subtitles"`
	GlobalPrompt     string `json:"globalPrompt"`
}

// Script is the document the video-editing assistant mutates through tool
// calls. Mutations go through script.ApplyToolCall or direct edits; callers
// persist the result via the storage layer.
type Script struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Shots     []Shot         `json:"shots"`
	Settings  ScriptSettings `json:"settings"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ToolCall is a structured mutation request emitted by the model. It is
// consumed once by the dispatch engine and never persisted; only the mutated
// script is.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// Message is one node in the lyrics conversation forest. ParentID is nil for
// a conversation root. The lyrics fields are populated only on assistant
// messages whose content parsed as frontmatter; everything except Deleted and
// the one-time lyrics attachment is immutable after creation.
type Message struct {
	ID       string  `json:"id"`
	Role     Role    `json:"role"`
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`

	Title      string  `json:"title,omitempty"`
	Style      string  `json:"style,omitempty"`
	Commentary string  `json:"commentary,omitempty"`
	LyricsBody string  `json:"lyricsBody,omitempty"`
	Duration   float64 `json:"duration,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	Deleted   bool      `json:"deleted"`
}

// Song is one generated take for an assistant message's lyrics. Several songs
// may reference the same message.
type Song struct {
	ID        string    `json:"id"`
	MessageID string    `json:"messageId"`
	Title     string    `json:"title"`
	AudioURL  string    `json:"audioUrl"`
	Pinned    bool      `json:"pinned"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImageSession is one user prompt context for image generation.
type ImageSession struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
	Deleted   bool      `json:"deleted"`
}

// ImageGeneration is one regeneration step within a session. StepID increases
// strictly per session; the generation with the highest StepID is the
// session's latest.
type ImageGeneration struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	StepID    int       `json:"stepId"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImageItem is a single image result within a generation step.
type ImageItem struct {
	ID           string    `json:"id"`
	GenerationID string    `json:"generationId"`
	URL          string    `json:"url"`
	Pinned       bool      `json:"pinned"`
	Deleted      bool      `json:"deleted"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Settings are studio-wide preferences included in snapshots.
type Settings struct {
	DefaultSongModel  string `json:"defaultSongModel,omitempty"`
	DefaultChatModel  string `json:"defaultChatModel,omitempty"`
	DefaultImageModel string `json:"defaultImageModel,omitempty"`
}

// Snapshot is the atomic export/import shape covering every collection.
// Soft-deleted rows are included; import replaces collections wholesale.
type Snapshot struct {
	Messages    []Message         `json:"messages"`
	Songs       []Song            `json:"songs"`
	Scripts     []Script          `json:"scripts"`
	Sessions    []ImageSession    `json:"sessions"`
	Generations []ImageGeneration `json:"generations"`
	Images      []ImageItem       `json:"images"`
	Settings    Settings          `json:"settings"`
}
