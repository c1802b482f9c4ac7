package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/colonyops/runway/internal/core/store"
)

// FileStore keeps one collection as a JSON array in <dir>/<collection>.json.
// The file is re-read on every call so edits made by other processes are
// picked up; writes replace it atomically.
type FileStore[T store.Entity] struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file store for collection inside dir.
func NewFileStore[T store.Entity](dir, collection string) (*FileStore[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore[T]{path: filepath.Join(dir, collection+".json")}, nil
}

// Path returns the backing file path.
func (s *FileStore[T]) Path() string {
	return s.path
}

func (s *FileStore[T]) List(_ context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	items, err := s.read()
	if err != nil {
		return zero, err
	}
	i := slices.IndexFunc(items, func(item T) bool { return item.EntityID() == id })
	if i < 0 {
		return zero, store.ErrNotFound
	}
	return items[i], nil
}

func (s *FileStore[T]) Upsert(_ context.Context, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(items, func(v T) bool { return v.EntityID() == item.EntityID() })
	if i < 0 {
		items = append(items, item)
	} else {
		items[i] = item
	}
	return s.write(items)
}

func (s *FileStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}
	n := len(items)
	items = slices.DeleteFunc(items, func(v T) bool { return v.EntityID() == id })
	if len(items) == n {
		return store.ErrNotFound
	}
	return s.write(items)
}

// ReplaceAll rewrites the file with items.
func (s *FileStore[T]) ReplaceAll(_ context.Context, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if items == nil {
		items = []T{}
	}
	return s.write(items)
}

func (s *FileStore[T]) read() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(s.path), err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(s.path), err)
	}
	return items, nil
}

func (s *FileStore[T]) write(items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(s.path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(s.path), err)
	}
	return nil
}
