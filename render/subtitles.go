package render

import (
	"fmt"
	"strings"

	"github.com/kamilio/ai-studio/types"
)

// Cue is one subtitle entry with absolute timeline positions.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// BuildCues lays shot narrations onto the final timeline. Shots contribute a
// cue only when they have subtitles enabled and non-empty narration text; the
// cue spans the shot's whole slot.
func BuildCues(shots []types.Shot) []Cue {
	cues := []Cue{}
	offset := 0.0
	for _, shot := range shots {
		text := strings.TrimSpace(shot.Narration.Text)
		if shot.Subtitles && shot.Narration.Enabled && text != "" {
			cues = append(cues, Cue{
				Start: offset,
				End:   offset + shot.Duration,
				Text:  text,
			})
		}
		offset += shot.Duration
	}
	return cues
}

// FormatSRT renders cues as an SRT document.
func FormatSRT(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(cue.Start), formatTimestamp(cue.End))
		fmt.Fprintf(&b, "%s\n\n", cue.Text)
	}
	return b.String()
}

// formatTimestamp converts seconds to the SRT form hh:mm:ss,mmm.
func formatTimestamp(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int((seconds - float64(hours*3600)) / 60)
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
