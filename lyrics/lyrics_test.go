package lyrics

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kamilio/ai-studio/gateway"
	"github.com/kamilio/ai-studio/storage"
)

func newTestService(t *testing.T) (*Service, *gateway.MockClient, *storage.Store) {
	t.Helper()

	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	store := storage.NewStore(backend)
	mock := gateway.NewMockClient()
	return NewService(mock, store), mock, store
}

func TestIterateParsesFrontmatterReply(t *testing.T) {
	service, mock, _ := newTestService(t)
	mock.EnqueueChat("---\ntitle: Tin Roof Rain\nstyle: folk\ncommentary: short and wet\n---\nrain on tin, verse one\n")

	result, err := service.Iterate(context.Background(), nil, "write about rain on a tin roof")
	if err != nil {
		t.Fatalf("iterate failed: %v", err)
	}

	if !result.Parsed {
		t.Fatal("frontmatter reply must parse")
	}
	if result.Reply.Title != "Tin Roof Rain" || result.Reply.LyricsBody != "rain on tin, verse one" {
		t.Fatalf("lyrics not attached: %+v", result.Reply)
	}
	if result.Reply.ParentID == nil || *result.Reply.ParentID != result.UserMessage.ID {
		t.Fatal("reply must be a child of the user message")
	}
	if result.UserMessage.ParentID != nil {
		t.Fatal("first turn must start a new conversation root")
	}
}

func TestIterateKeepsUnparseableReply(t *testing.T) {
	service, mock, _ := newTestService(t)
	mock.EnqueueChat("I would rather not write lyrics about that.")

	result, err := service.Iterate(context.Background(), nil, "something off limits")
	if err != nil {
		t.Fatalf("iterate failed: %v", err)
	}

	if result.Parsed {
		t.Fatal("plain prose must not count as parsed lyrics")
	}
	if result.Reply.Title != "" {
		t.Fatal("no lyrics fields on an unparsed reply")
	}
	if result.Reply.Content == "" {
		t.Fatal("raw reply text must still be stored")
	}
}

func TestIterateBranchSeesOnlyItsOwnAncestors(t *testing.T) {
	service, mock, _ := newTestService(t)
	mock.EnqueueChat(
		"---\ntitle: Draft One\n---\nfirst draft",
		"---\ntitle: Draft Two\n---\nsecond draft",
	)

	first, err := service.Iterate(context.Background(), nil, "write a song")
	if err != nil {
		t.Fatalf("first iterate failed: %v", err)
	}

	rootID := first.UserMessage.ID
	second, err := service.Iterate(context.Background(), &rootID, "try a sadder version")
	if err != nil {
		t.Fatalf("second iterate failed: %v", err)
	}

	chain, err := service.Tree().GetAncestors(second.Reply.ID)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	// root user msg -> branch user msg -> branch reply; the first reply is a
	// sibling branch and must not appear.
	if len(chain) != 3 {
		t.Fatalf("expected 3-node chain, got %d", len(chain))
	}
	for _, m := range chain {
		if m.ID == first.Reply.ID {
			t.Fatal("sibling branch leaked into the ancestor chain")
		}
	}
}

func TestGenerateSongsPersistsEveryTake(t *testing.T) {
	service, mock, store := newTestService(t)
	mock.EnqueueChat("---\ntitle: Takes\nstyle: pop\n---\nbody")

	result, err := service.Iterate(context.Background(), nil, "song please")
	if err != nil {
		t.Fatalf("iterate failed: %v", err)
	}

	takes, err := service.GenerateSongs(context.Background(), result.Reply.ID, 3)
	if err != nil {
		t.Fatalf("generate songs failed: %v", err)
	}
	if len(takes) != 3 {
		t.Fatalf("expected 3 takes, got %d", len(takes))
	}
	for i, take := range takes {
		if take.Err != nil {
			t.Fatalf("take %d failed: %v", i, take.Err)
		}
		if take.Song.MessageID != result.Reply.ID || take.Song.AudioURL == "" {
			t.Fatalf("take %d malformed: %+v", i, take.Song)
		}
	}

	stored, err := store.SongsForMessage(result.Reply.ID)
	if err != nil {
		t.Fatalf("listing takes failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 persisted takes, got %d", len(stored))
	}
}

// flakySongClient fails every other song request so batches exercise the
// partial-failure path.
type flakySongClient struct {
	*gateway.MockClient
	mu    sync.Mutex
	calls int
}

func (c *flakySongClient) GenerateSong(ctx context.Context, req gateway.SongRequest) (string, error) {
	c.mu.Lock()
	c.calls++
	fail := c.calls%2 == 0
	c.mu.Unlock()

	if fail {
		return "", fmt.Errorf("provider rejected take %d", c.calls)
	}
	return c.MockClient.GenerateSong(ctx, req)
}

func TestGenerateSongsSettlesAllSlotsOnPartialFailure(t *testing.T) {
	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	store := storage.NewStore(backend)
	flaky := &flakySongClient{MockClient: gateway.NewMockClient()}
	service := NewService(flaky, store)

	flaky.EnqueueChat("---\ntitle: Half Luck\n---\nbody")
	result, err := service.Iterate(context.Background(), nil, "song please")
	if err != nil {
		t.Fatalf("iterate failed: %v", err)
	}

	takes, err := service.GenerateSongs(context.Background(), result.Reply.ID, 4)
	if err != nil {
		t.Fatalf("generate songs failed: %v", err)
	}

	succeeded, failed := 0, 0
	for _, take := range takes {
		if take.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	if succeeded != 2 || failed != 2 {
		t.Fatalf("expected 2/2 split, got %d succeeded %d failed", succeeded, failed)
	}

	stored, err := store.SongsForMessage(result.Reply.ID)
	if err != nil {
		t.Fatalf("listing takes failed: %v", err)
	}
	if len(stored) != succeeded {
		t.Fatalf("only successful takes persist, got %d", len(stored))
	}
}

func TestGenerateSongsRejectsMessageWithoutLyrics(t *testing.T) {
	service, mock, _ := newTestService(t)
	mock.EnqueueChat("not frontmatter at all")

	result, err := service.Iterate(context.Background(), nil, "prompt")
	if err != nil {
		t.Fatalf("iterate failed: %v", err)
	}

	if _, err := service.GenerateSongs(context.Background(), result.Reply.ID, 2); err == nil {
		t.Fatal("expected error for reply without parsed lyrics")
	}
	if _, err := service.GenerateSongs(context.Background(), result.UserMessage.ID, 2); err == nil {
		t.Fatal("expected error for user message")
	}
}

func TestPinAndDeleteTakes(t *testing.T) {
	service, mock, _ := newTestService(t)
	mock.EnqueueChat("---\ntitle: Keeper\n---\nbody")

	result, err := service.Iterate(context.Background(), nil, "song")
	if err != nil {
		t.Fatalf("iterate failed: %v", err)
	}
	takes, err := service.GenerateSongs(context.Background(), result.Reply.ID, 2)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if err := service.PinSong(takes[0].Song.ID, true); err != nil {
		t.Fatalf("pin failed: %v", err)
	}
	if err := service.DeleteSong(takes[1].Song.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	remaining, err := service.Takes(result.Reply.ID)
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(remaining) != 1 || !remaining[0].Pinned {
		t.Fatalf("expected one pinned survivor, got %+v", remaining)
	}
}
