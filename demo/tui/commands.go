package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// startSession creates a command that probes the server and creates the
// script the chat session edits
func startSession(client *StudioClient) tea.Cmd {
	return func() tea.Msg {
		if err := client.Health(); err != nil {
			return SessionReadyMsg{Err: err}
		}
		script, err := client.CreateScript("Chat session")
		return SessionReadyMsg{Script: script, Err: err}
	}
}

// sendPrompt creates a command that runs one assistant edit turn
func sendPrompt(client *StudioClient, scriptID, prompt string) tea.Cmd {
	return func() tea.Msg {
		response, err := client.Chat(scriptID, prompt)
		return ChatReplyMsg{Response: response, Err: err}
	}
}
