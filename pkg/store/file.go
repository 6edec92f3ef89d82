package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/unshred/pkg/errors"
)

// FileStore is a file-based run store for CLI usage.
// Records are stored as indented JSON files named <id>.json.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based store.
// If baseDir is empty, defaults to DefaultDir().
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDir returns $XDG_DATA_HOME/unshred/runs, falling back to
// ~/.local/share/unshred/runs.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "unshred", "runs"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "unshred", "runs"), nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if err := os.WriteFile(s.recordPath(rec.ID), data, 0600); err != nil {
		return fmt.Errorf("write run file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRunID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.recordPath(id), id)
}

func (s *FileStore) read(path, id string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read run file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", id, err)
	}
	return &rec, nil
}

// List reads every record file. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read run dir: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		rec, err := s.read(filepath.Join(s.baseDir, entry.Name()), id)
		if err != nil {
			continue
		}
		out = append(out, rec.Summary())
	}
	return newestFirst(out, limit), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRunID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove run file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for run files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
