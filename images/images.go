package images

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamilio/ai-studio/config"
	"github.com/kamilio/ai-studio/gateway"
	"github.com/kamilio/ai-studio/storage"
	"github.com/kamilio/ai-studio/types"
)

// Service manages image sessions. A session is one prompt context; each
// regeneration inside it gets a step id one above the session's current
// maximum, so the latest generation is always the highest step.
type Service struct {
	client gateway.Client
	store  *storage.Store
}

func NewService(client gateway.Client, store *storage.Store) *Service {
	return &Service{client: client, store: store}
}

// ItemResult is one slot of a generation batch. Exactly one of Item and Err
// is meaningful.
type ItemResult struct {
	Item types.ImageItem
	Err  error
}

// GenerationResult is one generation step with its surviving items. Slots
// carries the per-slot outcomes of the batch that produced the step; it is
// empty on results read back from the store.
type GenerationResult struct {
	Generation types.ImageGeneration `json:"generation"`
	Items      []types.ImageItem     `json:"items"`
	Slots      []ItemResult          `json:"-"`
}

// StartSession creates a session for the prompt and runs its first
// generation. count <= 0 uses the default batch size.
func (s *Service) StartSession(ctx context.Context, prompt string, count int) (types.ImageSession, *GenerationResult, error) {
	session := types.ImageSession{
		ID:        uuid.NewString(),
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertSession(session); err != nil {
		return types.ImageSession{}, nil, err
	}

	result, err := s.Regenerate(ctx, session.ID, prompt, count)
	if err != nil {
		return types.ImageSession{}, nil, err
	}
	return session, result, nil
}

// Regenerate adds a new generation step to an existing session. The prompt
// may be refined from the session's original; an empty prompt reuses it.
// Images are requested one per slot in parallel and all slots settle before
// anything is persisted; a failed slot affects only itself. The generation
// row is inserted only when at least one slot produced an image, since an
// empty step would become the session's latest and hide the previous one.
func (s *Service) Regenerate(ctx context.Context, sessionID, prompt string, count int) (*GenerationResult, error) {
	session, err := s.findSession(sessionID)
	if err != nil {
		return nil, err
	}
	if prompt == "" {
		prompt = session.Prompt
	}
	if count <= 0 {
		count = config.DefaultImageCount
	}

	step, err := s.nextStep(sessionID)
	if err != nil {
		return nil, err
	}

	slots := make([]ItemResult, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			slots[slot] = s.generateItem(ctx, prompt)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, slot := range slots {
		if slot.Err == nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("image generation failed for all %d slots: %w", count, slots[0].Err)
	}

	generation := types.ImageGeneration{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		StepID:    step,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertGeneration(generation); err != nil {
		return nil, err
	}

	items := make([]types.ImageItem, 0, succeeded)
	for i := range slots {
		if slots[i].Err != nil {
			continue
		}
		slots[i].Item.GenerationID = generation.ID
		if err := s.store.InsertImage(slots[i].Item); err != nil {
			return nil, err
		}
		items = append(items, slots[i].Item)
	}

	return &GenerationResult{Generation: generation, Items: items, Slots: slots}, nil
}

func (s *Service) generateItem(ctx context.Context, prompt string) ItemResult {
	urls, err := s.client.GenerateImage(ctx, prompt, 1)
	if err != nil {
		return ItemResult{Err: fmt.Errorf("image generation failed: %w", err)}
	}
	if len(urls) == 0 {
		return ItemResult{Err: fmt.Errorf("image generation returned no url")}
	}

	return ItemResult{Item: types.ImageItem{
		ID:        uuid.NewString(),
		URL:       urls[0],
		CreatedAt: time.Now().UTC(),
	}}
}

// LatestGeneration returns the session's highest-step generation with its
// items. Ties cannot happen under nextStep, but insertion order breaks them
// deterministically if imported data carries duplicates.
func (s *Service) LatestGeneration(sessionID string) (*GenerationResult, error) {
	if _, err := s.findSession(sessionID); err != nil {
		return nil, err
	}

	generations, err := s.store.GenerationsForSession(sessionID)
	if err != nil {
		return nil, err
	}
	if len(generations) == 0 {
		return nil, fmt.Errorf("session %s has no generations", sessionID)
	}

	latest := generations[0]
	for _, g := range generations[1:] {
		if g.StepID >= latest.StepID {
			latest = g
		}
	}

	items, err := s.store.ImagesForGeneration(latest.ID)
	if err != nil {
		return nil, err
	}
	return &GenerationResult{Generation: latest, Items: items}, nil
}

// History returns every generation step of a session in step order with its
// surviving items.
func (s *Service) History(sessionID string) ([]GenerationResult, error) {
	generations, err := s.store.GenerationsForSession(sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]GenerationResult, 0, len(generations))
	for _, g := range generations {
		items, err := s.store.ImagesForGeneration(g.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, GenerationResult{Generation: g, Items: items})
	}
	return out, nil
}

// PinImage marks or unmarks an item as a keeper.
func (s *Service) PinImage(id string, pinned bool) error {
	return s.store.SetImagePinned(id, pinned)
}

// DeleteImage soft-deletes an item.
func (s *Service) DeleteImage(id string) error {
	return s.store.SoftDeleteImage(id)
}

// DeleteSession soft-deletes a session; its generations and items stay
// addressable for snapshot fidelity.
func (s *Service) DeleteSession(id string) error {
	return s.store.SoftDeleteSession(id)
}

func (s *Service) findSession(id string) (types.ImageSession, error) {
	sessions, err := s.store.ListSessions()
	if err != nil {
		return types.ImageSession{}, err
	}
	for _, session := range sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return types.ImageSession{}, fmt.Errorf("session %s not found", id)
}

func (s *Service) nextStep(sessionID string) (int, error) {
	generations, err := s.store.GenerationsForSession(sessionID)
	if err != nil {
		return 0, err
	}

	max := 0
	for _, g := range generations {
		if g.StepID > max {
			max = g.StepID
		}
	}
	return max + 1, nil
}
