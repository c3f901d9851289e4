package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// State represents the chat state machine
type State string

const (
	StateConnecting State = "connecting"
	StateIdle       State = "idle"
	StateWaiting    State = "waiting"
	StateError      State = "error"
)

// Exchange is one rendered turn: the prompt and what the assistant did
type Exchange struct {
	Prompt  string
	Text    string
	Reports []CallReportView
}

// Model represents the TUI client state (thin client)
type Model struct {
	Client *StudioClient

	State     State
	Input     string
	Pending   string
	Exchanges []Exchange
	Script    *ScriptView
	Err       error
}

// NewModel creates a new TUI model
func NewModel(studioURL string) Model {
	return Model{
		Client:    NewStudioClient(studioURL),
		State:     StateConnecting,
		Exchanges: make([]Exchange, 0),
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return startSession(m.Client)
}
