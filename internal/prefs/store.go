// Package prefs is the local preference store: favorites, click analytics,
// and the profile icon, persisted as one JSON document per key. Reads never
// fail (bad or missing data degrades to a type-appropriate default) and
// writes are best-effort. Every successful mutation is published on the
// change bus so other views re-read.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Persisted keys. The file for a key is "<key>.json" in the store directory.
const (
	KeyFavorites = "university_favorites"
	KeyAnalytics = "university_analytics"
	KeyIcon      = "profile_icon"
)

// ErrNotFound is returned by Store.Read when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is the raw key-value capability behind Preferences. It exists so
// tests can substitute MemoryStore for the real filesystem.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
	Delete(key string) error
}

// FileStore persists each key as a JSON file in a single directory, which is
// also the directory the bus watcher observes for cross-process changes.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create prefs dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backing directory (what the bus watcher should observe).
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read returns the stored bytes, or ErrNotFound.
func (s *FileStore) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write persists atomically: write a temp file, then rename over the target.
// A reader in another process never observes a half-written document.
func (s *FileStore) Write(key string, value []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *FileStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailWrites makes every Write return an error, for exercising the
	// best-effort write path.
	FailWrites bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Read(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (s *MemoryStore) Write(key string, value []byte) error {
	if s.FailWrites {
		return errors.New("write refused")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
