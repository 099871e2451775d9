package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KeyValueStore is the local key-value store the session token lives in.
type KeyValueStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStore is an in-process KeyValueStore.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// FileStore keeps keys in a single owner-only JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore backed by path. The file and its
// directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath is ~/.gophtasks/credentials.json.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".gophtasks", "credentials.json"), nil
}

// Get returns false if the file is missing or unreadable.
func (f *FileStore) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		values = make(map[string]string)
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStore) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return f.save(map[string]string{})
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *FileStore) load() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
