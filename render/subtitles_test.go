package render

import (
	"strings"
	"testing"

	"github.com/kamilio/ai-studio/types"
)

func narratedShot(id, text string, duration float64, subtitles bool) types.Shot {
	return types.Shot{
		ID:        id,
		Duration:  duration,
		Subtitles: subtitles,
		Narration: types.Narration{Enabled: true, Text: text},
	}
}

func TestBuildCuesTracksTimelineOffsets(t *testing.T) {
	shots := []types.Shot{
		narratedShot("a", "first line", 5, true),
		narratedShot("b", "skipped", 3, false),
		narratedShot("c", "third line", 4, true),
	}

	cues := BuildCues(shots)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 5 {
		t.Fatalf("first cue misplaced: %+v", cues[0])
	}
	// The subtitle-less shot still occupies timeline space.
	if cues[1].Start != 8 || cues[1].End != 12 {
		t.Fatalf("second cue misplaced: %+v", cues[1])
	}
}

func TestBuildCuesSkipsDisabledNarration(t *testing.T) {
	shot := narratedShot("a", "text", 5, true)
	shot.Narration.Enabled = false

	if cues := BuildCues([]types.Shot{shot}); len(cues) != 0 {
		t.Fatalf("disabled narration must produce no cues, got %d", len(cues))
	}

	empty := narratedShot("b", "   ", 5, true)
	if cues := BuildCues([]types.Shot{empty}); len(cues) != 0 {
		t.Fatalf("blank narration must produce no cues, got %d", len(cues))
	}
}

func TestFormatSRT(t *testing.T) {
	srt := FormatSRT([]Cue{
		{Start: 0, End: 5.5, Text: "hello"},
		{Start: 65.25, End: 70, Text: "goodbye"},
	})

	want := "1\n00:00:00,000 --> 00:00:05,500\nhello\n\n" +
		"2\n00:01:05,250 --> 00:01:10,000\ngoodbye\n\n"
	if srt != want {
		t.Fatalf("unexpected SRT output:\n%s", srt)
	}
}

func TestFormatTimestampHourRollover(t *testing.T) {
	if got := formatTimestamp(3661.042); got != "01:01:01,041" && got != "01:01:01,042" {
		t.Fatalf("unexpected timestamp %s", got)
	}
}

func TestRenderScriptRejectsIncompleteScripts(t *testing.T) {
	if err := RenderScript(types.Script{ID: "empty"}, "", "/tmp/out.mp4"); err == nil {
		t.Fatal("empty script must not render")
	}

	url := "https://example.com/a.mp4"
	script := types.Script{
		ID: "partial",
		Shots: []types.Shot{
			{ID: "a", Duration: 5, Video: types.Video{SelectedURL: &url}},
			{ID: "b", Duration: 5},
		},
	}
	err := RenderScript(script, "", "/tmp/out.mp4")
	if err == nil {
		t.Fatal("script with an unselected shot must not render")
	}
	if !strings.Contains(err.Error(), "shot b") {
		t.Fatalf("error must name the offending shot: %v", err)
	}
}
