package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend is the key-value persistence the store runs on. Keys are collection
// names; values are the collection's JSON. Load returns (nil, nil) for a key
// that was never saved.
type Backend interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FileBackend keeps each collection in one JSON file under a directory. This
// is the default backend and plays the role browser local storage has in the
// hosted app.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("file backend: dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file backend: mkdir %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file backend: read %s: %w", key, err)
	}
	return data, nil
}

// Save writes to a temp file in the same directory and renames it into place
// so a crash mid-write never leaves a truncated collection behind.
func (f *FileBackend) Save(key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("file backend: temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file backend: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file backend: close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file backend: rename %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}
