package script

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/types"
)

// ApplyToolCall maps (script, tool name, raw arguments) to the next script.
// It is pure: no I/O, no persistence, and it never fails loud. Tool calls are
// untrusted model output, so an unknown name, a missing required argument or
// a mistyped argument all return the input script unchanged; the caller
// detects a no-op by comparing before and after if it wants to report one.
//
// When a model response carries several calls, apply them in order and
// persist after each so every mutation sees the previous one's result.
func ApplyToolCall(s types.Script, name string, args map[string]any) types.Script {
	switch name {
	case ToolUpdateShotPrompt:
		return applyUpdateShotPrompt(s, args)
	case ToolUpdateShotNarration:
		return applyUpdateShotNarration(s, args)
	case ToolUpdateShotSubtitles:
		return applyUpdateShotSubtitles(s, args)
	case ToolAddShot:
		return applyAddShot(s, args)
	case ToolDeleteShot:
		return applyDeleteShot(s, args)
	case ToolReorderShots:
		return applyReorderShots(s, args)
	case ToolUpdateScriptSettings:
		return applyUpdateScriptSettings(s, args)
	default:
		return s
	}
}

func applyUpdateShotPrompt(s types.Script, args map[string]any) types.Script {
	var a updateShotPromptArgs
	if !decodeArgs(args, &a) || a.ShotID == nil || a.Prompt == nil {
		return s
	}

	return mapShot(s, *a.ShotID, func(shot types.Shot) types.Shot {
		shot.Prompt = *a.Prompt
		return shot
	})
}

func applyUpdateShotNarration(s types.Script, args map[string]any) types.Script {
	var a updateShotNarrationArgs
	if !decodeArgs(args, &a) || a.ShotID == nil {
		return s
	}
	if a.AudioSource != nil && !validAudioSource(*a.AudioSource) {
		return s
	}

	return mapShot(s, *a.ShotID, func(shot types.Shot) types.Shot {
		if a.Enabled != nil {
			shot.Narration.Enabled = *a.Enabled
		}
		if a.Text != nil {
			shot.Narration.Text = *a.Text
		}
		if a.AudioSource != nil {
			shot.Narration.AudioSource = types.AudioSource(*a.AudioSource)
		}
		return shot
	})
}

func applyUpdateShotSubtitles(s types.Script, args map[string]any) types.Script {
	var a updateShotSubtitlesArgs
	if !decodeArgs(args, &a) || a.ShotID == nil || a.Subtitles == nil {
		return s
	}

	return mapShot(s, *a.ShotID, func(shot types.Shot) types.Shot {
		shot.Subtitles = *a.Subtitles
		return shot
	})
}

func applyAddShot(s types.Script, args map[string]any) types.Script {
	var a addShotArgs
	if !decodeArgs(args, &a) || a.Title == nil || a.Prompt == nil {
		return s
	}

	shot := types.Shot{
		ID:     NewShotID(),
		Title:  *a.Title,
		Prompt: *a.Prompt,
		Narration: types.Narration{
			Enabled:     s.Settings.NarrationEnabled,
			AudioSource: types.AudioSourceVideo,
		},
		Video:     types.Video{History: []string{}},
		Subtitles: s.Settings.Subtitles,
		Duration:  config.DefaultShotDuration,
	}

	// Insert after the referenced shot when it exists; an absent or unknown
	// afterShotId falls back to append, not to a no-op.
	at := len(s.Shots)
	if a.AfterShotID != nil {
		for i, existing := range s.Shots {
			if existing.ID == *a.AfterShotID {
				at = i + 1
				break
			}
		}
	}

	shots := make([]types.Shot, 0, len(s.Shots)+1)
	shots = append(shots, s.Shots[:at]...)
	shots = append(shots, shot)
	shots = append(shots, s.Shots[at:]...)
	s.Shots = shots
	return s
}

func applyDeleteShot(s types.Script, args map[string]any) types.Script {
	var a deleteShotArgs
	if !decodeArgs(args, &a) || a.ShotID == nil {
		return s
	}

	shots := make([]types.Shot, 0, len(s.Shots))
	for _, shot := range s.Shots {
		if shot.ID != *a.ShotID {
			shots = append(shots, shot)
		}
	}
	if len(shots) == len(s.Shots) {
		return s
	}
	s.Shots = shots
	return s
}

func applyReorderShots(s types.Script, args map[string]any) types.Script {
	var a reorderShotsArgs
	if !decodeArgs(args, &a) || a.ShotIDs == nil {
		return s
	}

	byID := make(map[string]types.Shot, len(s.Shots))
	for _, shot := range s.Shots {
		byID[shot.ID] = shot
	}

	reordered := make([]types.Shot, 0, len(a.ShotIDs))
	taken := make(map[string]struct{}, len(a.ShotIDs))
	for _, id := range a.ShotIDs {
		shot, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := taken[id]; dup {
			// A duplicated id still counts toward the resolved length so the
			// safety check below rejects the call instead of dropping shots.
			reordered = append(reordered, shot)
			continue
		}
		taken[id] = struct{}{}
		reordered = append(reordered, shot)
	}

	// Reject unless the list resolves 1:1 against the current shots.
	// Applying a partial reorder would silently lose shots.
	if len(reordered) != len(s.Shots) || len(taken) != len(s.Shots) {
		return s
	}

	s.Shots = reordered
	return s
}

func applyUpdateScriptSettings(s types.Script, args map[string]any) types.Script {
	var a updateScriptSettingsArgs
	if !decodeArgs(args, &a) {
		return s
	}

	if a.NarrationEnabled != nil {
		s.Settings.NarrationEnabled = *a.NarrationEnabled
	}
	if a.Subtitles != nil {
		s.Settings.Subtitles = *a.Subtitles
	}
	if a.GlobalPrompt != nil {
		s.Settings.GlobalPrompt = *a.GlobalPrompt
	}
	return s
}

// mapShot rewrites the shot with the given id through fn, copying the shot
// slice so the caller's script is never aliased. Unknown ids are a no-op.
func mapShot(s types.Script, shotID string, fn func(types.Shot) types.Shot) types.Script {
	found := false
	shots := make([]types.Shot, len(s.Shots))
	for i, shot := range s.Shots {
		if shot.ID == shotID {
			shots[i] = fn(shot)
			found = true
		} else {
			shots[i] = shot
		}
	}
	if !found {
		return s
	}
	s.Shots = shots
	return s
}

func validAudioSource(v string) bool {
	return v == string(types.AudioSourceVideo) || v == string(types.AudioSourceElevenLabs)
}

// NewShotID returns an id unique within the process lifetime. Uniqueness only
// matters inside one script's shot list.
func NewShotID() string {
	return fmt.Sprintf("shot-%d-%04d", time.Now().UnixMilli(), rand.Intn(10000))
}
