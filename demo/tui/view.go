package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("🎬 Studio Script Assistant"))
	b.WriteString("\n\n")

	switch m.State {
	case StateConnecting:
		b.WriteString(okStyle.Render("⏳ Connecting to studio server..."))
		b.WriteString("\n")
		return b.String()
	case StateError:
		if m.Script == nil {
			b.WriteString(failStyle.Render("❌ Not connected to studio server"))
			b.WriteString("\n")
			if m.Err != nil {
				b.WriteString(dimStyle.Render(m.Err.Error()))
				b.WriteString("\n")
			}
			return b.String()
		}
	}

	for _, ex := range m.Exchanges {
		b.WriteString(okStyle.Render("you> "))
		b.WriteString(ex.Prompt)
		b.WriteString("\n")
		if ex.Text != "" {
			b.WriteString(dimStyle.Render("assistant> " + ex.Text))
			b.WriteString("\n")
		}
		for _, report := range ex.Reports {
			if report.Applied {
				b.WriteString(okStyle.Render("  ✓ " + report.Call.Name))
			} else {
				b.WriteString(failStyle.Render("  ✗ " + report.Call.Name + " (no-op)"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.Script != nil {
		b.WriteString(shotListStyle.Render(m.formatShotList()))
		b.WriteString("\n\n")
	}

	switch m.State {
	case StateWaiting:
		b.WriteString(okStyle.Render("⏳ Editing..."))
		b.WriteString("\n")
	case StateError:
		if m.Err != nil {
			b.WriteString(failStyle.Render(fmt.Sprintf("❌ Error: %v", m.Err)))
			b.WriteString("\n")
		}
		fallthrough
	default:
		b.WriteString(promptStyle.Render("prompt"))
		b.WriteString(" " + m.Input + "█")
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Enter to send | Esc or Ctrl+C to quit"))
	return b.String()
}

// formatShotList renders the current shot list after the latest edits
func (m Model) formatShotList() string {
	var b strings.Builder
	b.WriteString(promptStyle.Render(m.Script.Title))
	b.WriteString("\n\n")

	if len(m.Script.Shots) == 0 {
		b.WriteString(dimStyle.Render("(no shots yet, ask for one)"))
		return b.String()
	}

	for i, shot := range m.Script.Shots {
		line := fmt.Sprintf("%d. %s (%.0fs)", i+1, shot.Title, shot.Duration)
		if shot.Title == "" {
			line = fmt.Sprintf("%d. %s (%.0fs)", i+1, shot.ID, shot.Duration)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if shot.Prompt != "" {
			b.WriteString(dimStyle.Render("   " + shot.Prompt))
			b.WriteString("\n")
		}
	}
	return b.String()
}
