package lyrics

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/conversation"
	"github.com/kamilio/ai-studio/gateway"
	"github.com/kamilio/ai-studio/storage"
	"github.com/kamilio/ai-studio/types"
)

const systemPrompt = `You are a songwriter. Reply with YAML frontmatter between
--- delimiters carrying title, style, commentary and optional duration, then
the lyrics as the body. Keep the frontmatter fields short.`

// Service drives the lyrics workflow: iterate a conversation branch into a
// new draft, then turn any assistant draft into audio takes.
type Service struct {
	client gateway.Client
	store  *storage.Store
	tree   *conversation.Tree
}

func NewService(client gateway.Client, store *storage.Store) *Service {
	return &Service{
		client: client,
		store:  store,
		tree:   conversation.NewTree(store),
	}
}

// Tree exposes the underlying message forest for callers that browse it.
func (s *Service) Tree() *conversation.Tree {
	return s.tree
}

// IterateResult is one round trip: the persisted user message and the
// assistant reply, with lyrics attached when the reply parsed.
type IterateResult struct {
	UserMessage types.Message `json:"userMessage"`
	Reply       types.Message `json:"reply"`
	Parsed      bool          `json:"parsed"`
}

// Iterate appends the user's prompt under parentID (nil starts a new
// conversation), sends the full ancestor chain to the model and persists the
// reply as a child of the new user message. A reply that fails frontmatter
// parsing is kept as a plain assistant message; refusing to store it would
// lose the model's answer.
func (s *Service) Iterate(ctx context.Context, parentID *string, prompt string) (*IterateResult, error) {
	userMsg, err := s.tree.CreateMessage(conversation.CreateMessageParams{
		Role:     types.RoleUser,
		Content:  prompt,
		ParentID: parentID,
	})
	if err != nil {
		return nil, err
	}

	chain, err := s.tree.GetAncestors(userMsg.ID)
	if err != nil {
		return nil, err
	}

	history := make([]gateway.ChatMessage, 0, len(chain)+1)
	history = append(history, gateway.ChatMessage{Role: types.RoleUser, Content: systemPrompt})
	for _, m := range chain {
		history = append(history, gateway.ChatMessage{Role: m.Role, Content: m.Content})
	}

	settings, err := s.store.GetSettings()
	if err != nil {
		return nil, err
	}
	text, err := s.client.Chat(ctx, history, settings.DefaultChatModel)
	if err != nil {
		return nil, fmt.Errorf("lyrics request failed: %w", err)
	}

	userID := userMsg.ID
	params := conversation.CreateMessageParams{
		Role:     types.RoleAssistant,
		Content:  text,
		ParentID: &userID,
	}

	parsed, ok := conversation.ParseLyrics(text)
	if ok {
		params.Lyrics = &parsed
	} else {
		log.Printf("Warning: assistant reply for message %s is not frontmatter, storing as plain text", userMsg.ID)
	}

	reply, err := s.tree.CreateMessage(params)
	if err != nil {
		return nil, err
	}

	return &IterateResult{UserMessage: userMsg, Reply: reply, Parsed: ok}, nil
}

// TakeResult is one slot of a GenerateSongs batch. Exactly one of Song and
// Err is meaningful.
type TakeResult struct {
	Song types.Song
	Err  error
}

// GenerateSongs fires count audio takes for one assistant message's lyrics in
// parallel and waits for all of them. Slots fail independently; successful
// takes are persisted even when siblings error. count <= 0 uses the default.
func (s *Service) GenerateSongs(ctx context.Context, messageID string, count int) ([]TakeResult, error) {
	m, found, err := s.tree.GetMessage(messageID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("message %s not found", messageID)
	}
	if m.Role != types.RoleAssistant || m.Title == "" {
		return nil, fmt.Errorf("message %s carries no lyrics", messageID)
	}

	if count <= 0 {
		count = config.DefaultSongTakes
	}

	settings, err := s.store.GetSettings()
	if err != nil {
		return nil, err
	}

	results := make([]TakeResult, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot] = s.generateTake(ctx, m, settings.DefaultSongModel)
		}(i)
	}
	wg.Wait()

	return results, nil
}

func (s *Service) generateTake(ctx context.Context, m types.Message, model string) TakeResult {
	url, err := s.client.GenerateSong(ctx, gateway.SongRequest{
		Title:  m.Title,
		Style:  m.Style,
		Lyrics: m.LyricsBody,
		Model:  model,
	})
	if err != nil {
		return TakeResult{Err: fmt.Errorf("song generation failed: %w", err)}
	}

	song := types.Song{
		ID:        uuid.NewString(),
		MessageID: m.ID,
		Title:     m.Title,
		AudioURL:  url,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertSong(song); err != nil {
		return TakeResult{Err: err}
	}
	return TakeResult{Song: song}
}

// Takes lists the surviving audio takes for a message.
func (s *Service) Takes(messageID string) ([]types.Song, error) {
	return s.store.SongsForMessage(messageID)
}

// PinSong marks or unmarks a take as a keeper.
func (s *Service) PinSong(id string, pinned bool) error {
	return s.store.SetSongPinned(id, pinned)
}

// DeleteSong soft-deletes a take.
func (s *Service) DeleteSong(id string) error {
	return s.store.SoftDeleteSong(id)
}
