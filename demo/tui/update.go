package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case SessionReadyMsg:
		return m.handleSessionReady(msg)
	case ChatReplyMsg:
		return m.handleChatReply(msg)
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.submitPrompt()
	case tea.KeyBackspace:
		if len(m.Input) > 0 {
			m.Input = m.Input[:len(m.Input)-1]
		}
		return m, nil
	case tea.KeySpace:
		m.Input += " "
		return m, nil
	case tea.KeyRunes:
		if m.State == StateIdle {
			m.Input += string(msg.Runes)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.Input)
	if prompt == "" || m.State != StateIdle || m.Script == nil {
		return m, nil
	}

	m.Input = ""
	m.Pending = prompt
	m.State = StateWaiting
	m.Err = nil
	return m, sendPrompt(m.Client, m.Script.ID, prompt)
}

func (m Model) handleSessionReady(msg SessionReadyMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}
	m.Script = msg.Script
	m.State = StateIdle
	return m, nil
}

// handleChatReply processes one edit turn: the returned script replaces the
// local view so the shot list always shows post-edit state
func (m Model) handleChatReply(msg ChatReplyMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.State = StateError
		m.Err = msg.Err
		return m, nil
	}

	script := msg.Response.Script
	m.Script = &script
	m.Exchanges = append(m.Exchanges, Exchange{
		Prompt:  m.Pending,
		Text:    msg.Response.Text,
		Reports: msg.Response.Reports,
	})
	m.Pending = ""
	m.State = StateIdle
	m.Err = nil
	return m, nil
}
