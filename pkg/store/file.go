package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// FileStore is a file-based store for CLI use. Graphs and orders are JSON
// files in separate subdirectories of a base directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/conceptgraph/store/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "conceptgraph", "store")
	}
	for _, sub := range []string{"graphs", "orders"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0700); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

func (s *FileStore) graphPath(id string) string {
	return filepath.Join(s.baseDir, "graphs", id+".json")
}

func (s *FileStore) orderPath(id string) string {
	return filepath.Join(s.baseDir, "orders", id+".json")
}

func (s *FileStore) SaveGraph(ctx context.Context, rec *GraphRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec != nil && rec.ID != "" && rec.CreatedAt.IsZero() {
		if prev, err := s.readGraph(rec.ID); err == nil {
			rec.CreatedAt = prev.CreatedAt
		}
	}
	if err := Prepare(rec, s.now()); err != nil {
		return err
	}
	return writeJSON(s.graphPath(rec.ID), rec)
}

func (s *FileStore) LoadGraph(ctx context.Context, id string) (*GraphRecord, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readGraph(id)
}

func (s *FileStore) readGraph(id string) (*GraphRecord, error) {
	var rec GraphRecord
	if err := readJSON(s.graphPath(id), &rec); err != nil {
		return nil, err
	}
	if rec.Graph == nil {
		return nil, fmt.Errorf("parse graph %s: missing graph", id)
	}
	return &rec, nil
}

func (s *FileStore) ListGraphs(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.baseDir, "graphs"))
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := s.readGraph(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, Summarize(rec))
	}
	slices.SortFunc(out, func(a, b Summary) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *FileStore) DeleteGraph(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.graphPath(id), s.orderPath(id)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

func (s *FileStore) SaveOrder(ctx context.Context, graphID string, path []string) error {
	if err := ValidateID(graphID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.graphPath(graphID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("graph %s: %w", graphID, ErrNotFound)
		}
		return err
	}
	return writeJSON(s.orderPath(graphID), Order{
		GraphID:   graphID,
		Path:      slices.Clone(path),
		UpdatedAt: s.now(),
	})
}

func (s *FileStore) LoadOrder(ctx context.Context, graphID string) (*Order, error) {
	if err := ValidateID(graphID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var o Order
	if err := readJSON(s.orderPath(graphID), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for store files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", strings.TrimSuffix(filepath.Base(path), ".json"), ErrNotFound)
		}
		return fmt.Errorf("read store file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse store file: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}
