package storage

import (
	"reflect"
	"testing"
	"time"

	"github.com/kamilio/ai-studio/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	return NewStore(backend)
}

func seedStore(t *testing.T, s *Store) {
	t.Helper()

	created := time.Date(2026, 2, 14, 8, 0, 0, 0, time.UTC)
	root := types.Message{ID: "m-root", Role: types.RoleUser, Content: "write a song about rain", CreatedAt: created}
	parent := root.ID
	reply := types.Message{
		ID: "m-reply", Role: types.RoleAssistant, ParentID: &parent,
		Content: "---\ntitle: Rain\n---\nfalling down",
		Title:   "Rain", LyricsBody: "falling down",
		CreatedAt: created.Add(time.Minute),
	}
	for _, m := range []types.Message{root, reply} {
		if err := s.InsertMessage(m); err != nil {
			t.Fatalf("failed to insert message: %v", err)
		}
	}

	song := types.Song{ID: "s-1", MessageID: "m-reply", Title: "Rain", AudioURL: "https://cdn.example.com/rain.mp3", CreatedAt: created}
	if err := s.InsertSong(song); err != nil {
		t.Fatalf("failed to insert song: %v", err)
	}

	script := types.Script{
		ID: "sc-1", Title: "Teaser",
		Shots:     []types.Shot{{ID: "shot-1", Title: "Open", Prompt: "city", Video: types.Video{History: []string{}}, Duration: 5}},
		Settings:  types.ScriptSettings{NarrationEnabled: true},
		CreatedAt: created,
	}
	if err := s.SaveScript(script); err != nil {
		t.Fatalf("failed to save script: %v", err)
	}

	session := types.ImageSession{ID: "is-1", Prompt: "poster art", CreatedAt: created}
	if err := s.InsertSession(session); err != nil {
		t.Fatalf("failed to insert session: %v", err)
	}
	gen := types.ImageGeneration{ID: "ig-1", SessionID: "is-1", StepID: 1, Prompt: "poster art", CreatedAt: created}
	if err := s.InsertGeneration(gen); err != nil {
		t.Fatalf("failed to insert generation: %v", err)
	}
	item := types.ImageItem{ID: "ii-1", GenerationID: "ig-1", URL: "https://cdn.example.com/poster.png", CreatedAt: created}
	if err := s.InsertImage(item); err != nil {
		t.Fatalf("failed to insert image: %v", err)
	}
}

func TestSoftDeleteVisibility(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	if err := s.SoftDeleteMessage("m-reply"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	got, found, err := s.GetMessage("m-reply")
	if err != nil || !found {
		t.Fatalf("soft-deleted message must stay retrievable by id (found=%v err=%v)", found, err)
	}
	if !got.Deleted {
		t.Fatal("expected deleted flag set")
	}

	list, err := s.ListMessages()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, m := range list {
		if m.ID == "m-reply" {
			t.Fatal("list view must exclude soft-deleted messages")
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	// Include a soft-deleted row to prove it survives the round trip.
	if err := s.SoftDeleteSong("s-1"); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	before, err := s.Export()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	other := newTestStore(t)
	if err := other.Import(before); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	after, err := other.Export()
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}

	if !reflect.DeepEqual(before, after) {
		t.Fatalf("snapshot round trip drifted:\nbefore: %+v\nafter:  %+v", before, after)
	}
	if len(after.Songs) != 1 || !after.Songs[0].Deleted {
		t.Fatal("soft-deleted song must be exported and re-imported with its flag")
	}
}

func TestImportReplacesNotMerges(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	snapshot := types.Snapshot{
		Messages: []types.Message{{ID: "only", Role: types.RoleUser, Content: "hi", CreatedAt: time.Now().UTC()}},
	}
	if err := s.Import(snapshot); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	list, err := s.ListMessages()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "only" {
		t.Fatalf("import must replace the collection, got %v", list)
	}

	scripts, err := s.ListScripts()
	if err != nil {
		t.Fatalf("list scripts failed: %v", err)
	}
	if len(scripts) != 0 {
		t.Fatal("collections absent from the snapshot must be emptied")
	}
}

func TestStoreReloadsFromBackend(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	s := NewStore(backend)
	seedStore(t, s)

	// A second store over the same directory must see persisted state.
	reopened := NewStore(backend)
	got, found, err := reopened.GetScript("sc-1")
	if err != nil || !found {
		t.Fatalf("expected persisted script (found=%v err=%v)", found, err)
	}
	if got.Title != "Teaser" || len(got.Shots) != 1 {
		t.Fatalf("unexpected script %+v", got)
	}
}

func TestSaveScriptBumpsUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	before, _, err := s.GetScript("sc-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	before.Title = "Teaser v2"
	if err := s.SaveScript(before); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	after, _, err := s.GetScript("sc-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) && !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("expected UpdatedAt bumped, got %v (was %v)", after.UpdatedAt, before.UpdatedAt)
	}
	if after.Title != "Teaser v2" {
		t.Fatalf("expected replacement, got %q", after.Title)
	}
}

func TestDeleteScriptRemovesRow(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	if err := s.DeleteScript("sc-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := s.GetScript("sc-1"); found {
		t.Fatal("script deletion is hard; the row must be gone")
	}
}

func TestSongsForMessage(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	second := types.Song{ID: "s-2", MessageID: "m-reply", Title: "Rain (take 2)", AudioURL: "https://cdn.example.com/rain2.mp3", CreatedAt: time.Now().UTC()}
	if err := s.InsertSong(second); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	unrelated := types.Song{ID: "s-3", MessageID: "m-root", Title: "Other", AudioURL: "https://cdn.example.com/o.mp3", CreatedAt: time.Now().UTC()}
	if err := s.InsertSong(unrelated); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	songs, err := s.SongsForMessage("m-reply")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(songs) != 2 || songs[0].ID != "s-1" || songs[1].ID != "s-2" {
		t.Fatalf("unexpected takes %v", songs)
	}
}
