package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"videogenhost/internal/domain"
)

// VideoStore persists completed generation artifacts on the local filesystem.
// Files are written once under freshly generated names and never mutated, so
// concurrent readers need no locking.
type VideoStore struct {
	basePath string
}

// NewVideoStore initializes a VideoStore rooted at basePath, creating the
// directory if needed.
func NewVideoStore(basePath string) (*VideoStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &VideoStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *VideoStore) BasePath() string {
	return s.basePath
}

// Write persists the provided bytes under the given filename and returns the
// stored name. The name must be a plain base name; anything that could escape
// the video directory is rejected.
func (s *VideoStore) Write(name string, data []byte) (string, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.basePath, clean), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return clean, nil
}

// Open opens a stored file for reading and reports its size. Missing files and
// traversal attempts both surface as domain.ErrNotFound.
func (s *VideoStore) Open(name string) (*os.File, int64, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return nil, 0, domain.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.basePath, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("storage: open file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("storage: stat file: %w", err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, domain.ErrNotFound
	}
	return f, info.Size(), nil
}

// List returns the stored video filenames, sorted.
func (s *VideoStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: list videos: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// sanitizeName accepts only a clean base filename.
func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", errors.New("storage: invalid name")
	}
	if strings.ContainsAny(name, "/\\") || filepath.Base(name) != name {
		return "", errors.New("storage: invalid name")
	}
	return name, nil
}
