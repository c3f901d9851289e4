package conversation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/storage"
	"github.com/kamilio/ai-studio/types"
)

// Tree manages the lyrics message forest. Every user/assistant exchange is a
// node; a leaf's ancestor chain is one full conversation. Nodes are never
// mutated after creation except for the soft-delete flag and the one-time
// lyrics attachment on assistant messages.
type Tree struct {
	store *storage.Store
}

// NewTree wraps the storage context the forest lives in.
func NewTree(store *storage.Store) *Tree {
	return &Tree{store: store}
}

// CreateMessageParams carries everything CreateMessage persists. Lyrics
// fields may be pre-populated when the caller already parsed them.
type CreateMessageParams struct {
	Role     types.Role
	Content  string
	ParentID *string
	Lyrics   *Lyrics
}

// CreateMessage persists a new message with a fresh id and timestamp.
// A non-nil parent must already exist: children only ever reference persisted
// parents, which is what keeps the forest acyclic by construction.
func (t *Tree) CreateMessage(p CreateMessageParams) (types.Message, error) {
	if p.ParentID != nil {
		if _, found, err := t.store.GetMessage(*p.ParentID); err != nil {
			return types.Message{}, err
		} else if !found {
			return types.Message{}, fmt.Errorf("parent message %s not found", *p.ParentID)
		}
	}

	m := types.Message{
		ID:        uuid.NewString(),
		Role:      p.Role,
		Content:   p.Content,
		ParentID:  p.ParentID,
		CreatedAt: time.Now().UTC(),
	}
	if p.Lyrics != nil {
		applyLyrics(&m, *p.Lyrics)
	}

	if err := t.store.InsertMessage(m); err != nil {
		return types.Message{}, err
	}
	return m, nil
}

// GetMessage returns a single message by id, soft-deleted ones included;
// list views are where deleted rows get filtered.
func (t *Tree) GetMessage(id string) (types.Message, bool, error) {
	return t.store.GetMessage(id)
}

// GetAncestors reconstructs the conversation from the forest root down to and
// including the given message. An unknown id yields an empty slice. A cycle
// cannot arise from valid input, so hitting the depth guard is reported as an
// internal-consistency error rather than absorbed.
func (t *Tree) GetAncestors(id string) ([]types.Message, error) {
	var chain []types.Message

	current := &id
	for depth := 0; current != nil; depth++ {
		if depth >= config.MaxAncestorDepth {
			return nil, fmt.Errorf("message ancestry for %s exceeds %d levels; forest contains a cycle", id, config.MaxAncestorDepth)
		}

		m, found, err := t.store.GetMessage(*current)
		if err != nil {
			return nil, err
		}
		if !found {
			if depth == 0 {
				return []types.Message{}, nil
			}
			return nil, fmt.Errorf("message %s references missing parent %s", chain[len(chain)-1].ID, *current)
		}

		chain = append(chain, m)
		current = m.ParentID
	}

	// Walked leaf-to-root; callers want root-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// ListThreads returns the non-deleted conversation roots.
func (t *Tree) ListThreads() ([]types.Message, error) {
	messages, err := t.store.ListMessages()
	if err != nil {
		return nil, err
	}

	roots := make([]types.Message, 0)
	for _, m := range messages {
		if m.ParentID == nil {
			roots = append(roots, m)
		}
	}
	return roots, nil
}

// AttachLyrics retroactively populates the parsed lyrics fields on an
// assistant message. This is the only post-creation mutation besides soft
// delete, and it happens once, right after response parsing.
func (t *Tree) AttachLyrics(id string, lyrics Lyrics) (types.Message, error) {
	m, found, err := t.store.GetMessage(id)
	if err != nil {
		return types.Message{}, err
	}
	if !found {
		return types.Message{}, fmt.Errorf("message %s not found", id)
	}
	if m.Role != types.RoleAssistant {
		return types.Message{}, fmt.Errorf("message %s is not an assistant message", id)
	}

	applyLyrics(&m, lyrics)
	if err := t.store.UpdateMessage(m); err != nil {
		return types.Message{}, err
	}
	return m, nil
}

// SoftDelete flags a message deleted without removing it.
func (t *Tree) SoftDelete(id string) error {
	return t.store.SoftDeleteMessage(id)
}

func applyLyrics(m *types.Message, lyrics Lyrics) {
	m.Title = lyrics.Title
	m.Style = lyrics.Style
	m.Commentary = lyrics.Commentary
	m.LyricsBody = lyrics.Body
	m.Duration = lyrics.Duration
}
