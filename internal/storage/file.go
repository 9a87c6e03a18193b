package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileStore persists each document as a JSON file in a data directory.
// Writes replace the whole file; concurrent writers from two processes are
// last-writer-wins. A malformed file is treated as an empty document.
type FileStore struct {
	dir string
	mu  sync.Mutex
	log logger.Interface
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string, log logger.Interface) (*FileStore, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Load reads the JSON document for key into v.
func (s *FileStore) Load(ctx context.Context, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read document %q: %w", key, err)
	}

	if unmarshalErr := json.Unmarshal(data, v); unmarshalErr != nil {
		// Corrupt content is not fatal: the caller starts from empty.
		s.log.Warn("malformed document, starting from empty",
			"key", key,
			"error", unmarshalErr.Error(),
		)
		return ErrNotFound
	}

	return nil
}

// Save writes v as the JSON document for key, replacing any previous content.
func (s *FileStore) Save(ctx context.Context, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", key, err)
	}

	if writeErr := os.WriteFile(s.path(key), data, filePerm); writeErr != nil {
		return fmt.Errorf("write document %q: %w", key, writeErr)
	}

	return nil
}

// Delete removes the document file for key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return nil
}

// Keys lists the keys of all documents in the data directory.
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list data dir: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}

	return keys, nil
}

// path maps a key to a file path, replacing separators that would escape
// the data directory.
func (s *FileStore) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
