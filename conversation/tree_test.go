package conversation

import (
	"fmt"
	"testing"

	"github.com/kamilio/ai-studio/storage"
	"github.com/kamilio/ai-studio/types"
)

func newTestTree(t *testing.T) *Tree {
	t.Helper()

	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}
	return NewTree(storage.NewStore(backend))
}

func TestAncestorReconstructionRoundTrip(t *testing.T) {
	tree := newTestTree(t)

	const n = 6
	var parent *string
	created := make([]types.Message, 0, n)

	for i := 0; i < n; i++ {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		m, err := tree.CreateMessage(CreateMessageParams{
			Role:     role,
			Content:  fmt.Sprintf("turn %d", i),
			ParentID: parent,
		})
		if err != nil {
			t.Fatalf("failed to create message %d: %v", i, err)
		}
		created = append(created, m)
		id := m.ID
		parent = &id
	}

	chain, err := tree.GetAncestors(created[n-1].ID)
	if err != nil {
		t.Fatalf("ancestor walk failed: %v", err)
	}
	if len(chain) != n {
		t.Fatalf("expected %d ancestors, got %d", n, len(chain))
	}
	for i, m := range chain {
		if m.ID != created[i].ID {
			t.Fatalf("position %d: expected %s, got %s", i, created[i].ID, m.ID)
		}
		if m.Content != fmt.Sprintf("turn %d", i) {
			t.Fatalf("position %d: unexpected content %q", i, m.Content)
		}
	}
}

func TestGetAncestorsUnknownIDReturnsEmpty(t *testing.T) {
	tree := newTestTree(t)

	chain, err := tree.GetAncestors("no-such-message")
	if err != nil {
		t.Fatalf("unknown id must not be an error: %v", err)
	}
	if len(chain) != 0 {
		t.Fatalf("expected empty chain, got %d entries", len(chain))
	}
}

func TestCreateMessageRejectsMissingParent(t *testing.T) {
	tree := newTestTree(t)

	bogus := "never-persisted"
	_, err := tree.CreateMessage(CreateMessageParams{
		Role:     types.RoleUser,
		Content:  "orphan",
		ParentID: &bogus,
	})
	if err == nil {
		t.Fatal("expected error for unknown parent")
	}
}

func TestBranchingProducesIndependentChains(t *testing.T) {
	tree := newTestTree(t)

	root, err := tree.CreateMessage(CreateMessageParams{Role: types.RoleUser, Content: "write a song"})
	if err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	rootID := root.ID

	left, err := tree.CreateMessage(CreateMessageParams{Role: types.RoleAssistant, Content: "take one", ParentID: &rootID})
	if err != nil {
		t.Fatalf("failed to create left child: %v", err)
	}
	right, err := tree.CreateMessage(CreateMessageParams{Role: types.RoleAssistant, Content: "take two", ParentID: &rootID})
	if err != nil {
		t.Fatalf("failed to create right child: %v", err)
	}

	leftChain, err := tree.GetAncestors(left.ID)
	if err != nil {
		t.Fatalf("left walk failed: %v", err)
	}
	rightChain, err := tree.GetAncestors(right.ID)
	if err != nil {
		t.Fatalf("right walk failed: %v", err)
	}

	if len(leftChain) != 2 || len(rightChain) != 2 {
		t.Fatalf("expected two-node chains, got %d and %d", len(leftChain), len(rightChain))
	}
	if leftChain[0].ID != rootID || rightChain[0].ID != rootID {
		t.Fatal("both branches must share the same root")
	}
	if leftChain[1].ID == rightChain[1].ID {
		t.Fatal("branches must diverge at the leaf")
	}
}

func TestAttachLyricsPopulatesAssistantMessage(t *testing.T) {
	tree := newTestTree(t)

	root, err := tree.CreateMessage(CreateMessageParams{Role: types.RoleUser, Content: "write a song about rain"})
	if err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	rootID := root.ID

	raw := "---\ntitle: Rain\nstyle: folk\n---\nfalling down"
	reply, err := tree.CreateMessage(CreateMessageParams{Role: types.RoleAssistant, Content: raw, ParentID: &rootID})
	if err != nil {
		t.Fatalf("failed to create reply: %v", err)
	}

	lyrics, ok := ParseLyrics(raw)
	if !ok {
		t.Fatal("fixture content must parse")
	}
	updated, err := tree.AttachLyrics(reply.ID, lyrics)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	if updated.Title != "Rain" || updated.Style != "folk" || updated.LyricsBody != "falling down" {
		t.Fatalf("lyrics not attached: %+v", updated)
	}
	if updated.Content != raw {
		t.Fatal("raw content must stay untouched")
	}

	if _, err := tree.AttachLyrics(root.ID, lyrics); err == nil {
		t.Fatal("attaching lyrics to a user message must fail")
	}
}

func TestSoftDeletedMessageStaysInAncestorChain(t *testing.T) {
	tree := newTestTree(t)

	root, err := tree.CreateMessage(CreateMessageParams{Role: types.RoleUser, Content: "root"})
	if err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	rootID := root.ID
	leaf, err := tree.CreateMessage(CreateMessageParams{Role: types.RoleAssistant, Content: "leaf", ParentID: &rootID})
	if err != nil {
		t.Fatalf("failed to create leaf: %v", err)
	}

	if err := tree.SoftDelete(root.ID); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	chain, err := tree.GetAncestors(leaf.ID)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if len(chain) != 2 || !chain[0].Deleted {
		t.Fatal("soft-deleted ancestors stay in the chain with their flag set")
	}

	threads, err := tree.ListThreads()
	if err != nil {
		t.Fatalf("list threads failed: %v", err)
	}
	for _, th := range threads {
		if th.ID == root.ID {
			t.Fatal("deleted root must not appear in the thread list")
		}
	}
}
