package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists small string key/value entries as files on the local
// filesystem, one file per key. It backs theme-mode persistence across
// restarts.
type FileStore struct {
	basePath string
}

func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// Get reads the value stored under key. Returns an error when the key was
// never set (callers treat any error as key-not-found).
func (s *FileStore) Get(key string) (string, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		return "", fmt.Errorf("read key %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set writes the value under key, creating the base directory on demand.
func (s *FileStore) Set(key, value string) error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(s.pathFor(key), []byte(value), 0644); err != nil {
		return fmt.Errorf("write key %s: %w", key, err)
	}
	return nil
}

// Delete removes the key. Missing keys are not an error.
func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove key %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) pathFor(key string) string {
	// Keys contain dots, never path separators; flatten anything unexpected.
	safe := strings.ReplaceAll(key, string(os.PathSeparator), "_")
	return filepath.Join(s.basePath, safe)
}
