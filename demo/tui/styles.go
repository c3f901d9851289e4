package tui

import "github.com/charmbracelet/lipgloss"

// Studio palette
const (
	colorAccent  = "#2BB3A3"
	colorApplied = "#3FB950"
	colorFailed  = "#F85149"
	colorDim     = "#7A7A7A"
	colorInk     = "#F2F0EB"
	colorFrame   = "#1F9E8E"
)

// Styles for the chat TUI
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorAccent)).
			MarginTop(1).
			MarginBottom(1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorApplied))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorFailed))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorDim))

	shotListStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorFrame)).
			Padding(1, 2)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorInk)).
			Background(lipgloss.Color(colorAccent)).
			Padding(0, 1)
)
