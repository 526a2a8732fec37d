package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	fileStoreVersionV1  = "1"
	defaultStoreDir     = ".shopfront"
	defaultCredFileName = "credentials.json"
)

var errEmptyStorePath = errors.New("credstore: file store path is empty")

type fileStoreDocument struct {
	Version string            `json:"version"`
	Entries map[string]string `json:"entries"`
}

// FileStore persists credentials in a local JSON file. Writes go through a
// temp file and rename so a crash never leaves a torn document.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed credential store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// NewDefaultFileStore creates a store at ~/.shopfront/credentials.json.
func NewDefaultFileStore() (*FileStore, error) {
	path, err := DefaultFilePath()
	if err != nil {
		return nil, err
	}
	return NewFileStore(path), nil
}

// DefaultFilePath returns the default credential file path.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("credstore: resolve user home: %w", err)
	}
	return filepath.Join(home, defaultStoreDir, defaultCredFileName), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Get returns the value for key.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := entries[key]
	return value, ok, nil
}

// Set writes the value for key, overwriting any existing entry.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("credstore: entry key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[key] = value
	return s.save(entries)
}

// Delete removes the entry for key. Deleting a missing key is a no-op.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return s.save(entries)
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (map[string]string, error) {
	if strings.TrimSpace(s.path) == "" {
		return nil, errEmptyStorePath
	}

	// #nosec G304 -- path is configured by caller and constrained to local filesystem usage.
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("credstore: read credentials: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	var doc fileStoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("credstore: decode credentials: %w", err)
	}
	if doc.Entries == nil {
		return map[string]string{}, nil
	}
	return doc.Entries, nil
}

func (s *FileStore) save(entries map[string]string) error {
	if strings.TrimSpace(s.path) == "" {
		return errEmptyStorePath
	}

	doc := fileStoreDocument{
		Version: fileStoreVersionV1,
		Entries: entries,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: encode credentials: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("credstore: create store dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("credstore: write temp store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("credstore: replace store file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
