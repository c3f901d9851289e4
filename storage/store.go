package storage

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/kamilio/ai-studio/types"
)

// Collection keys in the backend.
const (
	keyMessages    = "messages"
	keySongs       = "songs"
	keyScripts     = "scripts"
	keySessions    = "sessions"
	keyGenerations = "generations"
	keyImages      = "images"
	keySettings    = "settings"
)

// Store is typed collection storage for every studio record. It lazily loads
// from its backend on first use and lives for the process's lifetime; there
// is no teardown. Deleting is always a soft-delete flag, never row removal
// (scripts are the one exception: their persisted shape carries no flag, so
// the script list removes them outright).
//
// Export and Import are the only snapshot boundary, and import replaces the
// collections wholesale. Test fixtures and user backup/restore both go
// through them, so fixture-seeded state is exactly what imported state
// looks like.
type Store struct {
	mu      sync.Mutex
	backend Backend
	loaded  bool
	data    types.Snapshot
}

// NewStore wraps a backend. Nothing is read until the first operation.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// load populates the in-memory collections once. Callers must hold mu.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	if err := s.loadCollection(keyMessages, &s.data.Messages); err != nil {
		return err
	}
	if err := s.loadCollection(keySongs, &s.data.Songs); err != nil {
		return err
	}
	if err := s.loadCollection(keyScripts, &s.data.Scripts); err != nil {
		return err
	}
	if err := s.loadCollection(keySessions, &s.data.Sessions); err != nil {
		return err
	}
	if err := s.loadCollection(keyGenerations, &s.data.Generations); err != nil {
		return err
	}
	if err := s.loadCollection(keyImages, &s.data.Images); err != nil {
		return err
	}
	if err := s.loadCollection(keySettings, &s.data.Settings); err != nil {
		return err
	}

	s.loaded = true
	return nil
}

func (s *Store) loadCollection(key string, dst any) error {
	raw, err := s.backend.Load(key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) saveCollection(key string, src any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Save(key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// ---- Messages ----

// InsertMessage appends a message. The caller owns id assignment.
func (s *Store) InsertMessage(m types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	s.data.Messages = append(s.data.Messages, m)
	return s.saveCollection(keyMessages, s.data.Messages)
}

// GetMessage returns the message with the given id, soft-deleted or not.
func (s *Store) GetMessage(id string) (types.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return types.Message{}, false, err
	}

	for _, m := range s.data.Messages {
		if m.ID == id {
			return m, true, nil
		}
	}
	return types.Message{}, false, nil
}

// UpdateMessage replaces the stored message with the same id.
func (s *Store) UpdateMessage(m types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	for i := range s.data.Messages {
		if s.data.Messages[i].ID == m.ID {
			s.data.Messages[i] = m
			return s.saveCollection(keyMessages, s.data.Messages)
		}
	}
	return fmt.Errorf("message %s not found", m.ID)
}

// ListMessages returns non-deleted messages in insertion order.
func (s *Store) ListMessages() ([]types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	out := make([]types.Message, 0, len(s.data.Messages))
	for _, m := range s.data.Messages {
		if !m.Deleted {
			out = append(out, m)
		}
	}
	return out, nil
}

// SoftDeleteMessage flags a message deleted. The row stays retrievable by id.
func (s *Store) SoftDeleteMessage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	for i := range s.data.Messages {
		if s.data.Messages[i].ID == id {
			s.data.Messages[i].Deleted = true
			return s.saveCollection(keyMessages, s.data.Messages)
		}
	}
	return fmt.Errorf("message %s not found", id)
}

// ---- Songs ----

func (s *Store) InsertSong(song types.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	s.data.Songs = append(s.data.Songs, song)
	return s.saveCollection(keySongs, s.data.Songs)
}

// ListSongs returns non-deleted songs in insertion order.
func (s *Store) ListSongs() ([]types.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	out := make([]types.Song, 0, len(s.data.Songs))
	for _, song := range s.data.Songs {
		if !song.Deleted {
			out = append(out, song)
		}
	}
	return out, nil
}

// SongsForMessage returns non-deleted takes referencing one message.
func (s *Store) SongsForMessage(messageID string) ([]types.Song, error) {
	songs, err := s.ListSongs()
	if err != nil {
		return nil, err
	}

	out := songs[:0]
	for _, song := range songs {
		if song.MessageID == messageID {
			out = append(out, song)
		}
	}
	return out, nil
}

func (s *Store) SetSongPinned(id string, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	for i := range s.data.Songs {
		if s.data.Songs[i].ID == id {
			s.data.Songs[i].Pinned = pinned
			return s.saveCollection(keySongs, s.data.Songs)
		}
	}
	return fmt.Errorf("song %s not found", id)
}

func (s *Store) SoftDeleteSong(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	for i := range s.data.Songs {
		if s.data.Songs[i].ID == id {
			s.data.Songs[i].Deleted = true
			return s.saveCollection(keySongs, s.data.Songs)
		}
	}
	return fmt.Errorf("song %s not found", id)
}

// ---- Scripts ----

// SaveScript inserts or replaces a script and bumps UpdatedAt.
func (s *Store) SaveScript(script types.Script) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	script.UpdatedAt = time.Now().UTC()
	for i := range s.data.Scripts {
		if s.data.Scripts[i].ID == script.ID {
			s.data.Scripts[i] = script
			return s.saveCollection(keyScripts, s.data.Scripts)
		}
	}
	s.data.Scripts = append(s.data.Scripts, script)
	return s.saveCollection(keyScripts, s.data.Scripts)
}

func (s *Store) GetScript(id string) (types.Script, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return types.Script{}, false, err
	}

	for _, script := range s.data.Scripts {
		if script.ID == id {
			return script, true, nil
		}
	}
	return types.Script{}, false, nil
}

func (s *Store) ListScripts() ([]types.Script, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	return append([]types.Script(nil), s.data.Scripts...), nil
}

// DeleteScript removes a script outright; the persisted script shape has no
// deleted flag.
func (s *Store) DeleteScript(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	scripts := s.data.Scripts[:0]
	for _, script := range s.data.Scripts {
		if script.ID != id {
			scripts = append(scripts, script)
		}
	}
	s.data.Scripts = scripts
	return s.saveCollection(keyScripts, s.data.Scripts)
}

// ---- Image sessions / generations / items ----

func (s *Store) InsertSession(session types.ImageSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	s.data.Sessions = append(s.data.Sessions, session)
	return s.saveCollection(keySessions, s.data.Sessions)
}

func (s *Store) ListSessions() ([]types.ImageSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	out := make([]types.ImageSession, 0, len(s.data.Sessions))
	for _, session := range s.data.Sessions {
		if !session.Deleted {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *Store) SoftDeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	for i := range s.data.Sessions {
		if s.data.Sessions[i].ID == id {
			s.data.Sessions[i].Deleted = true
			return s.saveCollection(keySessions, s.data.Sessions)
		}
	}
	return fmt.Errorf("session %s not found", id)
}

func (s *Store) InsertGeneration(g types.ImageGeneration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	s.data.Generations = append(s.data.Generations, g)
	return s.saveCollection(keyGenerations, s.data.Generations)
}

// GenerationsForSession returns a session's generations in insertion order.
func (s *Store) GenerationsForSession(sessionID string) ([]types.ImageGeneration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	out := make([]types.ImageGeneration, 0)
	for _, g := range s.data.Generations {
		if g.SessionID == sessionID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) InsertImage(item types.ImageItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	s.data.Images = append(s.data.Images, item)
	return s.saveCollection(keyImages, s.data.Images)
}

// ImagesForGeneration returns a step's non-deleted items in insertion order.
func (s *Store) ImagesForGeneration(generationID string) ([]types.ImageItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}

	out := make([]types.ImageItem, 0)
	for _, item := range s.data.Images {
		if item.GenerationID == generationID && !item.Deleted {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *Store) SetImagePinned(id string, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	for i := range s.data.Images {
		if s.data.Images[i].ID == id {
			s.data.Images[i].Pinned = pinned
			return s.saveCollection(keyImages, s.data.Images)
		}
	}
	return fmt.Errorf("image %s not found", id)
}

func (s *Store) SoftDeleteImage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	for i := range s.data.Images {
		if s.data.Images[i].ID == id {
			s.data.Images[i].Deleted = true
			return s.saveCollection(keyImages, s.data.Images)
		}
	}
	return fmt.Errorf("image %s not found", id)
}

// ---- Settings ----

func (s *Store) GetSettings() (types.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return types.Settings{}, err
	}
	return s.data.Settings, nil
}

func (s *Store) SetSettings(settings types.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	s.data.Settings = settings
	return s.saveCollection(keySettings, s.data.Settings)
}

// ---- Snapshot ----

// Export returns a deep copy of every collection, soft-deleted rows included.
func (s *Store) Export() (types.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return types.Snapshot{}, err
	}

	var out types.Snapshot
	if err := cloneSnapshot(s.data, &out); err != nil {
		return types.Snapshot{}, err
	}
	return out, nil
}

// Import replaces every collection with the snapshot's contents and persists
// them. It is a full replacement, never a merge.
func (s *Store) Import(snapshot types.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}

	var replacement types.Snapshot
	if err := cloneSnapshot(snapshot, &replacement); err != nil {
		return err
	}
	s.data = replacement

	if err := s.saveCollection(keyMessages, s.data.Messages); err != nil {
		return err
	}
	if err := s.saveCollection(keySongs, s.data.Songs); err != nil {
		return err
	}
	if err := s.saveCollection(keyScripts, s.data.Scripts); err != nil {
		return err
	}
	if err := s.saveCollection(keySessions, s.data.Sessions); err != nil {
		return err
	}
	if err := s.saveCollection(keyGenerations, s.data.Generations); err != nil {
		return err
	}
	if err := s.saveCollection(keyImages, s.data.Images); err != nil {
		return err
	}
	return s.saveCollection(keySettings, s.data.Settings)
}

// cloneSnapshot deep-copies through JSON so exported state never aliases the
// store's own slices.
func cloneSnapshot(in types.Snapshot, out *types.Snapshot) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("clone snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("clone snapshot: %w", err)
	}
	return nil
}
