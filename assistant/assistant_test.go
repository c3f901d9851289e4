package assistant

import (
	"context"
	"testing"

	"github.com/kamilio/ai-studio/gateway"
	"github.com/kamilio/ai-studio/script"
	"github.com/kamilio/ai-studio/storage"
	"github.com/kamilio/ai-studio/types"
)

func newTestAssistant(t *testing.T) (*Assistant, *gateway.MockClient, *storage.Store) {
	t.Helper()

	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	store := storage.NewStore(backend)
	mock := gateway.NewMockClient()
	return New(mock, store), mock, store
}

func seedScript(t *testing.T, store *storage.Store) types.Script {
	t.Helper()

	s := types.Script{
		ID:    "script-1",
		Title: "Launch teaser",
		Shots: []types.Shot{
			{ID: "shot-a", Title: "Opening", Prompt: "city skyline at dawn", Duration: 5},
			{ID: "shot-b", Title: "Product", Prompt: "device on a desk", Duration: 5},
		},
		Settings: types.ScriptSettings{NarrationEnabled: true, Subtitles: true},
	}
	if err := store.SaveScript(s); err != nil {
		t.Fatalf("failed to seed script: %v", err)
	}
	saved, _, err := store.GetScript(s.ID)
	if err != nil {
		t.Fatalf("failed to reload script: %v", err)
	}
	return saved
}

func TestEditScriptAppliesCallsInOrder(t *testing.T) {
	assistant, mock, store := newTestAssistant(t)
	seedScript(t, store)

	mock.EnqueueToolResult(&gateway.ChatResult{
		Text: "Rewrote the opening and flipped the order.",
		ToolCalls: []types.ToolCall{
			gateway.ToolCallFixture(script.ToolUpdateShotPrompt, map[string]any{
				"shotId": "shot-a", "prompt": "neon skyline at night",
			}),
			gateway.ToolCallFixture(script.ToolReorderShots, map[string]any{
				"shotIds": []any{"shot-b", "shot-a"},
			}),
		},
	})

	result, err := assistant.EditScript(context.Background(), "script-1", "make it night and lead with the product")
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if len(result.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(result.Reports))
	}
	for i, r := range result.Reports {
		if !r.Applied {
			t.Fatalf("call %d should have applied: %+v", i, r.Call)
		}
	}
	if result.Script.Shots[0].ID != "shot-b" || result.Script.Shots[1].ID != "shot-a" {
		t.Fatalf("reorder not applied: %+v", result.Script.Shots)
	}
	if result.Script.Shots[1].Prompt != "neon skyline at night" {
		t.Fatalf("prompt edit not applied: %q", result.Script.Shots[1].Prompt)
	}

	// The later call must see the earlier call's effect, and the final state
	// must be what got persisted.
	stored, _, err := store.GetScript("script-1")
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if stored.Shots[0].ID != "shot-b" || stored.Shots[1].Prompt != "neon skyline at night" {
		t.Fatalf("persisted script out of sync: %+v", stored.Shots)
	}
}

func TestEditScriptReportsNoOpCalls(t *testing.T) {
	assistant, mock, store := newTestAssistant(t)
	seedScript(t, store)

	mock.EnqueueToolResult(&gateway.ChatResult{
		ToolCalls: []types.ToolCall{
			gateway.ToolCallFixture(script.ToolUpdateShotPrompt, map[string]any{
				"shotId": "no-such-shot", "prompt": "anything",
			}),
			gateway.ToolCallFixture(script.ToolDeleteShot, map[string]any{
				"shotId": "shot-b",
			}),
		},
	})

	result, err := assistant.EditScript(context.Background(), "script-1", "trim it down")
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if result.Reports[0].Applied {
		t.Fatal("call against unknown shot must report as no-op")
	}
	if !result.Reports[1].Applied {
		t.Fatal("valid delete must report as applied")
	}
	if len(result.Script.Shots) != 1 || result.Script.Shots[0].ID != "shot-a" {
		t.Fatalf("delete not applied: %+v", result.Script.Shots)
	}
}

func TestEditScriptNoToolCallsLeavesScriptUntouched(t *testing.T) {
	assistant, mock, store := newTestAssistant(t)
	seeded := seedScript(t, store)

	mock.EnqueueToolResult(&gateway.ChatResult{Text: "The script already does that."})

	result, err := assistant.EditScript(context.Background(), "script-1", "keep it as is")
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if result.Text != "The script already does that." {
		t.Fatalf("unexpected text %q", result.Text)
	}
	if len(result.Reports) != 0 {
		t.Fatalf("expected no reports, got %d", len(result.Reports))
	}

	stored, _, err := store.GetScript("script-1")
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if !stored.UpdatedAt.Equal(seeded.UpdatedAt) {
		t.Fatal("script must not be re-persisted when nothing changed")
	}
}

func TestEditScriptUnknownScript(t *testing.T) {
	assistant, _, _ := newTestAssistant(t)

	if _, err := assistant.EditScript(context.Background(), "missing", "anything"); err == nil {
		t.Fatal("expected error for unknown script")
	}
}
